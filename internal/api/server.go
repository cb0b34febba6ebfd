// Package api exposes the campaign management HTTP surface: campaign and ad
// group CRUD against the local store, plus the publish/pause operations that
// push campaign state to Google Ads through the gateway.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/ads"
	"github.com/pmalloy/campaignsync/internal/analytics"
	"github.com/pmalloy/campaignsync/internal/config"
	"github.com/pmalloy/campaignsync/internal/db"
	"github.com/pmalloy/campaignsync/internal/models"
	"github.com/pmalloy/campaignsync/internal/observability"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Store     models.Store
	Gateway   ads.Client
	Analytics analytics.Service
	Notifier  *db.RedisStore
	Metrics   observability.MetricsRegistry
	Config    config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store models.Store, gateway ads.Client, analyticsSvc analytics.Service, notifier *db.RedisStore, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if analyticsSvc == nil {
		analyticsSvc = analytics.NewMockAnalytics()
	}
	return &Server{
		Logger:    logger,
		Store:     store,
		Gateway:   gateway,
		Analytics: analyticsSvc,
		Notifier:  notifier,
		Metrics:   metrics,
		Config:    cfg,
	}
}

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorJSON writes the error envelope used by every failure response.
func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// notifyUpdate publishes an entity-update notification. Failures are logged
// and counted, never surfaced to the caller.
func (s *Server) notifyUpdate(r *http.Request, entity, action, id string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyUpdate(r.Context(), entity, action, id); err != nil {
		s.Logger.Error("failed to publish update message",
			zap.Error(err),
			zap.String("entity", entity),
			zap.String("action", action),
			zap.String("id", id))
		s.Metrics.IncrementNotifyFailures()
	}
}

// recordEvent writes a lifecycle event to the analytics sink. Best effort.
func (s *Server) recordEvent(r *http.Request, eventType, campaignID, adGroupID, googleCampaignID, status, detail string) {
	if err := s.Analytics.RecordEvent(r.Context(), eventType, campaignID, adGroupID, googleCampaignID, status, detail); err != nil {
		s.Logger.Warn("failed to record lifecycle event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.String("campaign_id", campaignID))
	}
}
