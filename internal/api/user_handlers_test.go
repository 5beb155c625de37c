package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "Shelfshare Test", body.Name)
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	user, token := ts.seedUser(t, "reader@example.com", false)

	resp := ts.api.Get("/api/v1/users/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body.ID)
	assert.Equal(t, "reader@example.com", body.Email)
	assert.Empty(t, body.Username)
	assert.False(t, body.IsAdmin)
}

func TestGetCurrentUser_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestClaimUsername(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	resp := ts.api.Put("/api/v1/users/me/username", bearer(token), map[string]any{
		"username": "bookworm",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "bookworm", body.Username)

	// Usernames are permanent.
	resp = ts.api.Put("/api/v1/users/me/username", bearer(token), map[string]any{
		"username": "different",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestClaimUsername_Collision(t *testing.T) {
	ts := setupTestServer(t)
	first, _ := ts.seedUser(t, "first@example.com", false)
	ts.claimUsername(t, first.ID, "bookworm")

	_, token := ts.seedUser(t, "second@example.com", false)
	resp := ts.api.Put("/api/v1/users/me/username", bearer(token), map[string]any{
		"username": "bookworm",
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "CONFLICT", apiErr.Code)
}

func TestClaimUsername_Invalid(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	for _, username := range []string{"ab", "UpperCase", "has space", "admin"} {
		resp := ts.api.Put("/api/v1/users/me/username", bearer(token), map[string]any{
			"username": username,
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code, "username %q", username)
	}
}
