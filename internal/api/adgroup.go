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

// adGroupRequest covers both create and partial update. Every field is a
// pointer so an absent key can be told apart from an explicit zero value.
type adGroupRequest struct {
	Name           *string  `json:"name"`
	Status         *string  `json:"status"`
	TargetAudience *string  `json:"target_audience"`
	Keywords       *string  `json:"keywords"`
	CPCBid         *float64 `json:"cpc_bid"`
	CPMBid         *float64 `json:"cpm_bid"`
	Headline1      *string  `json:"headline1"`
	Headline2      *string  `json:"headline2"`
	Headline3      *string  `json:"headline3"`
	Description1   *string  `json:"description1"`
	Description2   *string  `json:"description2"`
	FinalURL       *string  `json:"final_url"`
	DisplayURL     *string  `json:"display_url"`
}

func (s *Server) ListAdGroups(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	campaignID := mux.Vars(r)["id"]

	if _, err := s.Store.GetCampaign(r.Context(), campaignID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "campaign not found")
			return
		}
		logger.Error("get campaign", zap.Error(err), zap.String("campaign_id", campaignID))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	groups, err := s.Store.ListAdGroups(r.Context(), campaignID)
	if err != nil {
		logger.Error("list ad groups", zap.Error(err), zap.String("campaign_id", campaignID))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if groups == nil {
		groups = []models.AdGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) CreateAdGroup(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	campaignID := mux.Vars(r)["id"]

	var req adGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == nil {
		errorJSON(w, http.StatusBadRequest, "Missing field: name")
		return
	}

	now := time.Now().UTC()
	g := models.AdGroup{
		ID:             uuid.NewString(),
		CampaignID:     campaignID,
		Name:           *req.Name,
		Status:         models.AdGroupStatusEnabled,
		TargetAudience: req.TargetAudience,
		Keywords:       req.Keywords,
		CPCBid:         req.CPCBid,
		CPMBid:         req.CPMBid,
		Headline1:      req.Headline1,
		Headline2:      req.Headline2,
		Headline3:      req.Headline3,
		Description1:   req.Description1,
		Description2:   req.Description2,
		FinalURL:       req.FinalURL,
		DisplayURL:     req.DisplayURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Status != nil {
		g.Status = *req.Status
	}

	if err := s.Store.InsertAdGroup(r.Context(), &g); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "campaign not found")
			return
		}
		logger.Error("insert ad group", zap.Error(err), zap.String("campaign_id", campaignID))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventAdGroupCreated, campaignID, g.ID, "", g.Status, g.Name)
	s.notifyUpdate(r, "ad_group", "create", g.ID)
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) GetAdGroup(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	g, err := s.Store.GetAdGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "ad group not found")
			return
		}
		logger.Error("get ad group", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// UpdateAdGroup applies a partial update: only keys present in the request
// body are changed.
func (s *Server) UpdateAdGroup(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	var req adGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	g, err := s.Store.GetAdGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "ad group not found")
			return
		}
		logger.Error("get ad group", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Status != nil {
		g.Status = *req.Status
	}
	if req.TargetAudience != nil {
		g.TargetAudience = req.TargetAudience
	}
	if req.Keywords != nil {
		g.Keywords = req.Keywords
	}
	if req.CPCBid != nil {
		g.CPCBid = req.CPCBid
	}
	if req.CPMBid != nil {
		g.CPMBid = req.CPMBid
	}
	if req.Headline1 != nil {
		g.Headline1 = req.Headline1
	}
	if req.Headline2 != nil {
		g.Headline2 = req.Headline2
	}
	if req.Headline3 != nil {
		g.Headline3 = req.Headline3
	}
	if req.Description1 != nil {
		g.Description1 = req.Description1
	}
	if req.Description2 != nil {
		g.Description2 = req.Description2
	}
	if req.FinalURL != nil {
		g.FinalURL = req.FinalURL
	}
	if req.DisplayURL != nil {
		g.DisplayURL = req.DisplayURL
	}
	g.UpdatedAt = time.Now().UTC()

	if err := s.Store.UpdateAdGroup(r.Context(), g); err != nil {
		logger.Error("update ad group", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventAdGroupUpdated, g.CampaignID, g.ID, "", g.Status, "")
	s.notifyUpdate(r, "ad_group", "update", g.ID)
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) DeleteAdGroup(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	g, err := s.Store.GetAdGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "ad group not found")
			return
		}
		logger.Error("get ad group", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.Store.DeleteAdGroup(r.Context(), id); err != nil {
		logger.Error("delete ad group", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventAdGroupDeleted, g.CampaignID, id, "", "", "")
	s.notifyUpdate(r, "ad_group", "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

// PauseAdGroup sets the ad group status to PAUSED. No precondition on the
// current status.
func (s *Server) PauseAdGroup(w http.ResponseWriter, r *http.Request) {
	s.setAdGroupStatus(w, r, models.AdGroupStatusPaused)
}

// EnableAdGroup sets the ad group status to ENABLED.
func (s *Server) EnableAdGroup(w http.ResponseWriter, r *http.Request) {
	s.setAdGroupStatus(w, r, models.AdGroupStatusEnabled)
}

func (s *Server) setAdGroupStatus(w http.ResponseWriter, r *http.Request, status string) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	id := mux.Vars(r)["id"]

	g, err := s.Store.GetAdGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "ad group not found")
			return
		}
		logger.Error("get ad group", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	if err := s.Store.UpdateAdGroup(r.Context(), g); err != nil {
		logger.Error("update ad group status", zap.Error(err), zap.String("ad_group_id", id))
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordEvent(r, analytics.EventAdGroupUpdated, g.CampaignID, g.ID, "", g.Status, "")
	s.notifyUpdate(r, "ad_group", "update", g.ID)
	writeJSON(w, http.StatusOK, g)
}
