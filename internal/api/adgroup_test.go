package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmalloy/campaignsync/internal/models"
)

func createAdGroup(t *testing.T, router http.Handler, campaignID string, body map[string]interface{}) models.AdGroup {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+campaignID+"/ad-groups", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var g models.AdGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	return g
}

func TestCreateAdGroup_Defaults(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()
	c := createCampaign(t, router, validCampaignBody())

	g := createAdGroup(t, router, c.ID, map[string]interface{}{
		"name":     "Brand Terms",
		"keywords": "shoes, sneakers",
		"cpc_bid":  1.25,
	})

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, c.ID, g.CampaignID)
	assert.Equal(t, "Brand Terms", g.Name)
	assert.Equal(t, models.AdGroupStatusEnabled, g.Status)
	require.NotNil(t, g.Keywords)
	assert.Equal(t, "shoes, sneakers", *g.Keywords)
	require.NotNil(t, g.CPCBid)
	assert.Equal(t, 1.25, *g.CPCBid)
	assert.Nil(t, g.CPMBid)
	assert.Nil(t, g.TargetAudience)
}

func TestCreateAdGroup_MissingName(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()
	c := createCampaign(t, router, validCampaignBody())

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/ad-groups", map[string]interface{}{
		"keywords": "shoes",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Missing field: name", resp["error"])
}

func TestCreateAdGroup_UnknownCampaign(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/nope/ad-groups", map[string]interface{}{
		"name": "Orphan",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAdGroups_NewestFirst(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()
	c := createCampaign(t, router, validCampaignBody())

	first := createAdGroup(t, router, c.ID, map[string]interface{}{"name": "First"})
	second := createAdGroup(t, router, c.ID, map[string]interface{}{"name": "Second"})

	rec := doJSON(t, router, http.MethodGet, "/api/campaigns/"+c.ID+"/ad-groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var groups []models.AdGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, second.ID, groups[0].ID)
	assert.Equal(t, first.ID, groups[1].ID)
}

func TestUpdateAdGroup_PartialUpdate(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()
	c := createCampaign(t, router, validCampaignBody())

	g := createAdGroup(t, router, c.ID, map[string]interface{}{
		"name":     "Brand Terms",
		"keywords": "shoes, sneakers",
		"cpc_bid":  1.25,
	})

	// Updating only cpc_bid leaves every other field untouched.
	rec := doJSON(t, router, http.MethodPut, "/api/ad-groups/"+g.ID, map[string]interface{}{
		"cpc_bid": 2.50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.AdGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.CPCBid)
	assert.Equal(t, 2.50, *updated.CPCBid)
	assert.Equal(t, "Brand Terms", updated.Name)
	require.NotNil(t, updated.Keywords)
	assert.Equal(t, "shoes, sneakers", *updated.Keywords)
	assert.Equal(t, models.AdGroupStatusEnabled, updated.Status)
	assert.True(t, updated.UpdatedAt.After(g.UpdatedAt) || updated.UpdatedAt.Equal(g.UpdatedAt))
}

func TestAdGroupStatusToggles(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()
	c := createCampaign(t, router, validCampaignBody())
	g := createAdGroup(t, router, c.ID, map[string]interface{}{"name": "Toggle"})

	rec := doJSON(t, router, http.MethodPost, "/api/ad-groups/"+g.ID+"/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var paused models.AdGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paused))
	assert.Equal(t, models.AdGroupStatusPaused, paused.Status)

	rec = doJSON(t, router, http.MethodPost, "/api/ad-groups/"+g.ID+"/enable", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var enabled models.AdGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enabled))
	assert.Equal(t, models.AdGroupStatusEnabled, enabled.Status)

	// Pause has no precondition on current status.
	rec = doJSON(t, router, http.MethodPost, "/api/ad-groups/"+g.ID+"/pause", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteAdGroup(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()
	c := createCampaign(t, router, validCampaignBody())
	g := createAdGroup(t, router, c.ID, map[string]interface{}{"name": "Doomed"})

	rec := doJSON(t, router, http.MethodDelete, "/api/ad-groups/"+g.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/ad-groups/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The campaign itself is untouched.
	rec = doJSON(t, router, http.MethodGet, "/api/campaigns/"+c.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
