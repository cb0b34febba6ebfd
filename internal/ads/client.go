// Package ads pushes local campaign state to the Google Ads API. The push is
// one-way: the only data read back is the identifiers Google assigns at
// creation time.
package ads

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/config"
	"github.com/pmalloy/campaignsync/internal/models"
	"github.com/pmalloy/campaignsync/internal/observability"
)

// Client is the outbound gateway to the advertising platform. PublishCampaign
// creates the remote object graph (budget, campaign, ad group, ad) and
// returns the platform-assigned campaign ID. PauseCampaign issues a partial
// status update for a previously published campaign.
type Client interface {
	PublishCampaign(ctx context.Context, c *models.Campaign) (string, error)
	PauseCampaign(ctx context.Context, googleCampaignID string) error
}

// New selects the gateway variant once at startup: the live client when the
// full credential set is configured, otherwise the mock client.
func New(creds config.GoogleAds, logger *zap.Logger, metrics observability.MetricsRegistry) Client {
	if creds.Complete() {
		return NewLiveClient(creds, logger, metrics)
	}
	logger.Warn("Google Ads credentials missing, gateway operating in mock mode")
	return NewMockClient(logger)
}

// FieldError is a single field-level message from a rejected mutate call.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the structured error surfaced when the platform rejects an
// operation.
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Error renders the code, message and any field messages on one line.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	for _, fe := range e.Fields {
		if fe.Field != "" {
			fmt.Fprintf(&b, "; %s: %s", fe.Field, fe.Message)
		} else {
			fmt.Fprintf(&b, "; %s", fe.Message)
		}
	}
	return b.String()
}
