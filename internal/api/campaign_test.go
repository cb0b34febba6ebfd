package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/ads"
	"github.com/pmalloy/campaignsync/internal/analytics"
	"github.com/pmalloy/campaignsync/internal/config"
	"github.com/pmalloy/campaignsync/internal/models"
	"github.com/pmalloy/campaignsync/internal/observability"
)

func newTestServer() *Server {
	logger := zap.NewNop()
	return NewServer(
		logger,
		models.NewInMemoryStore(),
		ads.NewMockClient(logger),
		analytics.NewMockAnalytics(),
		nil,
		observability.NewNoOpRegistry(),
		config.Config{},
	)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validCampaignBody() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Summer Sale",
		"objective":    "SALES",
		"daily_budget": 50,
		"start_date":   "2026-09-01",
		"end_date":     "2026-09-30",
	}
}

func createCampaign(t *testing.T, router http.Handler, body map[string]interface{}) models.Campaign {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/campaigns", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestCreateCampaign_RoundTrip(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	body := validCampaignBody()
	body["target_cpa"] = 12.5
	body["ad_headline"] = "Huge Savings"
	c := createCampaign(t, router, body)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Summer Sale", c.Name)
	assert.Equal(t, "SALES", c.Objective)
	assert.Equal(t, int64(50), c.DailyBudget)
	assert.Equal(t, models.CampaignStatusDraft, c.Status)
	assert.Equal(t, models.DefaultCampaignType, c.CampaignType)
	assert.Equal(t, models.DefaultBiddingStrategy, c.BiddingStrategy)
	assert.Equal(t, "2026-09-01", c.StartDate.String())
	assert.Equal(t, "2026-09-30", c.EndDate.String())
	require.NotNil(t, c.TargetCPA)
	assert.Equal(t, 12.5, *c.TargetCPA)
	require.NotNil(t, c.AdHeadline)
	assert.Equal(t, "Huge Savings", *c.AdHeadline)
	assert.Nil(t, c.GoogleCampaignID)

	// The stored record matches what was returned.
	rec := doJSON(t, router, http.MethodGet, "/api/campaigns/"+c.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Name, got.Name)
}

func TestCreateCampaign_MissingFields(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	for _, field := range []string{"name", "objective", "daily_budget", "start_date", "end_date"} {
		body := validCampaignBody()
		delete(body, field)

		rec := doJSON(t, router, http.MethodPost, "/api/campaigns", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "field %s", field)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Missing field: "+field, resp["error"])
	}
}

func TestCreateCampaign_InvalidDate(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	body := validCampaignBody()
	body["start_date"] = "2024-13-01"

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", resp["error"])
}

func TestListCampaigns_NewestFirstWithCounts(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	first := createCampaign(t, router, validCampaignBody())
	secondBody := validCampaignBody()
	secondBody["name"] = "Winter Sale"
	second := createCampaign(t, router, secondBody)

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+first.ID+"/ad-groups", map[string]interface{}{"name": "Group A"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/campaigns", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.NotNil(t, list[1].AdGroupsCount)
	assert.Equal(t, 1, *list[1].AdGroupsCount)
	require.NotNil(t, list[0].AdGroupsCount)
	assert.Equal(t, 0, *list[0].AdGroupsCount)
}

func TestGetCampaign_NotFound(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	rec := doJSON(t, router, http.MethodGet, "/api/campaigns/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishCampaign_MockMode(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	c := createCampaign(t, router, validCampaignBody())

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var published models.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &published))
	assert.Equal(t, models.CampaignStatusPublished, published.Status)
	require.NotNil(t, published.GoogleCampaignID)
	assert.Contains(t, *published.GoogleCampaignID, "MOCK_CAMPAIGN_ID_")

	// A second publish is a no-op returning the same id.
	rec = doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Campaign already published", resp["message"])
	assert.Equal(t, *published.GoogleCampaignID, resp["google_id"])
}

// failingGateway rejects every operation.
type failingGateway struct{}

func (f *failingGateway) PublishCampaign(context.Context, *models.Campaign) (string, error) {
	return "", errors.New("quota exceeded")
}

func (f *failingGateway) PauseCampaign(context.Context, string) error {
	return errors.New("quota exceeded")
}

func TestPublishCampaign_GatewayError(t *testing.T) {
	srv := newTestServer()
	srv.Gateway = &failingGateway{}
	router := srv.Routes()

	c := createCampaign(t, router, validCampaignBody())

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/publish", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Google Ads API Error: quota exceeded", resp["error"])

	// Status and external id were not persisted.
	stored, err := srv.Store.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusDraft, stored.Status)
	assert.Nil(t, stored.GoogleCampaignID)
}

func TestPauseCampaign_Preconditions(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	c := createCampaign(t, router, validCampaignBody())

	// Pausing a DRAFT campaign is rejected and leaves it unchanged.
	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/pause", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Campaign must be PUBLISHED to be paused", resp["error"])

	stored, err := srv.Store.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusDraft, stored.Status)

	// After publishing, pause succeeds.
	rec = doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var paused models.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paused))
	assert.Equal(t, models.CampaignStatusPaused, paused.Status)
	assert.NotNil(t, paused.GoogleCampaignID)
}

func TestDeleteCampaign_CascadesAdGroups(t *testing.T) {
	srv := newTestServer()
	router := srv.Routes()

	c := createCampaign(t, router, validCampaignBody())

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns/"+c.ID+"/ad-groups", map[string]interface{}{"name": "Group A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var g models.AdGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))

	rec = doJSON(t, router, http.MethodDelete, "/api/campaigns/"+c.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/campaigns/"+c.ID+"/ad-groups", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/ad-groups/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
