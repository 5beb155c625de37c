package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createList(t *testing.T, token string, body map[string]any) ListResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/lists", bearer(token), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var list ListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	return list
}

func recommendationPayload() map[string]any {
	return map[string]any{
		"name":        "Summer Sci-Fi",
		"description": "Beach listening",
		"type":        "RECOMMENDATION",
	}
}

func TestCreateList(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	list := ts.createList(t, token, recommendationPayload())
	assert.Equal(t, "Summer Sci-Fi", list.Name)
	assert.Equal(t, "RECOMMENDATION", list.Type)
	assert.Equal(t, "recommendation-strip", list.TemplateID)
	assert.Equal(t, "READY", list.ImageStatus)
	assert.Equal(t, 1, list.ImageVersion)
}

func TestCreateList_Validation(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	resp := ts.api.Post("/api/v1/lists", bearer(token), map[string]any{
		"name": "Bad Type",
		"type": "RANKING",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReplaceListItems(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	list := ts.createList(t, token, map[string]any{
		"name":  "Ranked",
		"type":  "TIER",
		"tiers": []string{"S", "A", "B"},
	})

	resp := ts.api.Put("/api/v1/lists/"+list.ID+"/items", bearer(token), map[string]any{
		"items": []map[string]any{
			{"asin": "B002V5BGSA", "tier": 0},
			{"asin": "B017V4IM1G", "tier": 2},
			{"asin": "B0036N91FA"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated ListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	require.Len(t, updated.Items, 3)
	assert.Equal(t, 0, updated.Items[0].Tier)
	assert.Equal(t, 2, updated.Items[1].Tier)
	assert.Equal(t, -1, updated.Items[2].Tier)
	assert.Equal(t, 2, updated.ImageVersion, "content change bumps the image version")
}

func TestListOwnership(t *testing.T) {
	ts := setupTestServer(t)
	_, ownerToken := ts.seedUser(t, "owner@example.com", false)
	_, otherToken := ts.seedUser(t, "other@example.com", false)

	list := ts.createList(t, ownerToken, recommendationPayload())

	// Another signed-in user cannot touch it.
	resp := ts.api.Get("/api/v1/lists/"+list.ID, bearer(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/lists/"+list.ID, bearer(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	// The owner still can.
	resp = ts.api.Delete("/api/v1/lists/"+list.ID, bearer(ownerToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestUpdateList(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	list := ts.createList(t, token, recommendationPayload())

	resp := ts.api.Put("/api/v1/lists/"+list.ID, bearer(token), map[string]any{
		"name":        "Autumn Sci-Fi",
		"description": "Rainy day listening",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated ListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Autumn Sci-Fi", updated.Name)
	assert.Equal(t, 2, updated.ImageVersion)
}

func TestListLists(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "reader@example.com", false)

	ts.createList(t, token, recommendationPayload())
	ts.createList(t, token, map[string]any{
		"name":  "Ranked",
		"type":  "TIER",
		"tiers": []string{"S", "A"},
	})

	resp := ts.api.Get("/api/v1/lists", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListListsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Lists, 2)
}
