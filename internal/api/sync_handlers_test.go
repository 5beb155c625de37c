package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importPayload() map[string]any {
	return map[string]any{
		"entries": []map[string]any{
			{"asin": "B002V5BGSA", "source": "LIBRARY", "status": "FINISHED", "progress_percent": 100, "rating": 5},
			{"asin": "B017V4IM1G", "source": "LIBRARY", "status": "IN_PROGRESS", "progress_percent": 40},
			{"asin": "B0036N91FA", "source": "WISHLIST"},
		},
	}
}

func (ts *testServer) issueSyncToken(t *testing.T, sessionToken string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/sync/token", bearer(sessionToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body SyncTokenResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestSyncImport(t *testing.T) {
	ts := setupTestServer(t)
	_, session := ts.seedUser(t, "reader@example.com", false)

	resp := ts.api.Post("/api/v1/sync/token", bearer(session))
	require.Equal(t, http.StatusOK, resp.Code)

	var tokenBody SyncTokenResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tokenBody))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tokenBody.ExpiresAt, time.Minute)
	assert.Contains(t, tokenBody.AudibleURL, "audible.com/library")
	assert.False(t, tokenBody.HasSyncedBefore)

	resp = ts.api.Post("/api/v1/sync/import", bearer(tokenBody.Token), importPayload())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var history SyncHistoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	assert.Equal(t, 2, history.LibraryCount)
	assert.Equal(t, 1, history.WishlistCount)
	assert.True(t, history.Success)
	assert.Empty(t, history.Warnings)

	// The import lands in the library.
	resp = ts.api.Get("/api/v1/library", bearer(session))
	require.Equal(t, http.StatusOK, resp.Code)

	var library ListLibraryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &library))
	assert.Len(t, library.Entries, 3)
}

func TestSyncImport_TokenIsSingleUse(t *testing.T) {
	ts := setupTestServer(t)
	_, session := ts.seedUser(t, "reader@example.com", false)
	syncToken := ts.issueSyncToken(t, session)

	resp := ts.api.Post("/api/v1/sync/import", bearer(syncToken), importPayload())
	require.Equal(t, http.StatusOK, resp.Code)

	// Replaying the same token must fail.
	resp = ts.api.Post("/api/v1/sync/import", bearer(syncToken), importPayload())
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestSyncImport_RejectsSessionToken(t *testing.T) {
	ts := setupTestServer(t)
	_, session := ts.seedUser(t, "reader@example.com", false)

	// A session token is not a sync token; the scopes are disjoint.
	resp := ts.api.Post("/api/v1/sync/import", bearer(session), importPayload())
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSyncImport_NoToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/sync/import", importPayload())
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSyncHistory(t *testing.T) {
	ts := setupTestServer(t)
	_, session := ts.seedUser(t, "reader@example.com", false)

	for range 3 {
		syncToken := ts.issueSyncToken(t, session)
		resp := ts.api.Post("/api/v1/sync/import", bearer(syncToken), importPayload())
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/sync/history", bearer(session))
	require.Equal(t, http.StatusOK, resp.Code)

	var body SyncHistoryListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Imports, 3)
}
