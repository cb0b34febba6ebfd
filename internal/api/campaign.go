package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/analytics"
	"github.com/pmalloy/campaignsync/internal/middleware"
	"github.com/pmalloy/campaignsync/internal/models"
)

// createCampaignRequest uses pointer fields so that absent keys are
// distinguishable from zero values during validation.
type createCampaignRequest struct {
	Name            *string  `json:"name"`
	Objective       *string  `json:"objective"`
	CampaignType    *string  `json:"campaign_type"`
	DailyBudget     *int64   `json:"daily_budget"`
	TargetCPA       *float64 `json:"target_cpa"`
	BiddingStrategy *string  `json:"bidding_strategy"`
	StartDate       *string  `json:"start_date"`
	EndDate         *string  `json:"end_date"`
	AdGroupName     *string  `json:"ad_group_name"`
	AdHeadline      *string  `json:"ad_headline"`
	AdDescription   *string  `json:"ad_description"`
	AssetURL        *string  `json:"asset_url"`
}

// missingField returns the name of the first required field absent from the
// request, or "".
func (req *createCampaignRequest) missingField() string {
	switch {
	case req.Name == nil:
		return "name"
	case req.Objective == nil:
		return "objective"
	case req.DailyBudget == nil:
		return "daily_budget"
	case req.StartDate == nil:
		return "start_date"
	case req.EndDate == nil:
		return "end_date"
	}
	return ""
}

func (s *Server) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)

	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	if field := req.missingField(); field != "" {
		errorJSON(w, http.StatusBadRequest, "Missing field: "+field)
		return
	}

	startDate, err := models.ParseDate(*req.StartDate)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	endDate, err := models.ParseDate(*req.EndDate)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	c := models.Campaign{
		ID:              uuid.NewString(),
		Name:            *req.Name,
		Objective:       *req.Objective,
		CampaignType:    models.DefaultCampaignType,
		DailyBudget:     *req.DailyBudget,
		TargetCPA:       req.TargetCPA,
		BiddingStrategy: models.DefaultBiddingStrategy,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          models.CampaignStatusDraft,
		AdGroupName:     req.AdGroupName,
		AdHeadline:      req.AdHeadline,
		AdDescription:   req.AdDescription,
		AssetURL:        req.AssetURL,
		CreatedAt:       time.Now().UTC(),
	}
	if req.CampaignType != nil {
		c.CampaignType = *req.CampaignType
	}
	if req.BiddingStrategy != nil {
		c.BiddingStrategy = *req.BiddingStrategy
	}

	if err := s.Store.InsertCampaign(r.Context(), &c); err != nil {
		logger.Error("insert campaign", zap.Error(err))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventCampaignCreated, c.ID, "", "", c.Status, c.Name)
	s.notifyUpdate(r, "campaign", "create", c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)

	campaigns, err := s.Store.ListCampaigns(r.Context())
	if err != nil {
		logger.Error("list campaigns", zap.Error(err))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	for i := range campaigns {
		n, err := s.Store.CountAdGroups(r.Context(), campaigns[i].ID)
		if err != nil {
			logger.Error("count ad groups", zap.Error(err), zap.String("campaign_id", campaigns[i].ID))
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		campaigns[i].AdGroupsCount = &n
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (s *Server) GetCampaign(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	c, err := s.Store.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "campaign not found")
			return
		}
		logger.Error("get campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	groups, err := s.Store.ListAdGroups(r.Context(), id)
	if err != nil {
		logger.Error("list ad groups", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if groups == nil {
		groups = []models.AdGroup{}
	}
	c.AdGroups = groups
	writeJSON(w, http.StatusOK, c)
}

// PublishCampaign pushes the campaign to Google Ads. Publishing an already
// published campaign is a no-op success; the external id and PUBLISHED status
// are persisted only after the gateway call succeeds.
func (s *Server) PublishCampaign(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	c, err := s.Store.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "campaign not found")
			return
		}
		logger.Error("get campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	if c.Published() {
		s.Metrics.IncrementPublishes("noop")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Campaign already published",
			"google_id": c.GoogleCampaignID,
		})
		return
	}

	googleID, err := s.Gateway.PublishCampaign(r.Context(), c)
	if err != nil {
		s.Metrics.IncrementPublishes("error")
		logger.Error("publish campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, "Google Ads API Error: "+err.Error())
		return
	}

	c.GoogleCampaignID = &googleID
	c.Status = models.CampaignStatusPublished
	if err := s.Store.UpdateCampaign(r.Context(), c); err != nil {
		s.Metrics.IncrementPublishes("error")
		logger.Error("persist published campaign", zap.Error(err),
			zap.String("campaign_id", id),
			zap.String("google_campaign_id", googleID))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Metrics.IncrementPublishes("success")
	s.recordEvent(r, analytics.EventCampaignPublished, c.ID, "", googleID, c.Status, "")
	s.notifyUpdate(r, "campaign", "publish", c.ID)
	writeJSON(w, http.StatusOK, c)
}

// PauseCampaign pauses a published campaign on Google Ads, then locally.
func (s *Server) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	c, err := s.Store.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "campaign not found")
			return
		}
		logger.Error("get campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !c.Published() {
		errorJSON(w, http.StatusBadRequest, "Campaign must be PUBLISHED to be paused")
		return
	}

	var googleID string
	if c.GoogleCampaignID != nil {
		googleID = *c.GoogleCampaignID
	}
	if err := s.Gateway.PauseCampaign(r.Context(), googleID); err != nil {
		logger.Error("pause campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, "Google Ads API Error: "+err.Error())
		return
	}

	c.Status = models.CampaignStatusPaused
	if err := s.Store.UpdateCampaign(r.Context(), c); err != nil {
		logger.Error("persist paused campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventCampaignPaused, c.ID, "", googleID, c.Status, "")
	s.notifyUpdate(r, "campaign", "pause", c.ID)
	writeJSON(w, http.StatusOK, c)
}

// DeleteCampaign removes the campaign and all of its ad groups.
func (s *Server) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	if err := s.Store.DeleteCampaign(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "campaign not found")
			return
		}
		logger.Error("delete campaign", zap.Error(err), zap.String("campaign_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventCampaignDeleted, id, "", "", "", "")
	s.notifyUpdate(r, "campaign", "delete", id)
	w.WriteHeader(http.StatusNoContent)
}
