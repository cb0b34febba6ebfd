package ads

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/models"
)

// MockClient simulates the advertising platform when credentials are absent.
// No network calls are made; publish synthesizes a time-based identifier so
// the rest of the system can be exercised end to end.
type MockClient struct {
	logger *zap.Logger
	now    func() time.Time
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock gateway.
func NewMockClient(logger *zap.Logger) *MockClient {
	return &MockClient{logger: logger, now: time.Now}
}

// PublishCampaign returns a synthesized mock campaign identifier.
func (m *MockClient) PublishCampaign(_ context.Context, c *models.Campaign) (string, error) {
	id := "MOCK_CAMPAIGN_ID_" + m.now().Format("20060102150405")
	m.logger.Info("mocking campaign publication",
		zap.String("campaign_id", c.ID),
		zap.String("campaign_name", c.Name),
		zap.String("google_campaign_id", id))
	return id, nil
}

// PauseCampaign succeeds without side effects.
func (m *MockClient) PauseCampaign(_ context.Context, googleCampaignID string) error {
	m.logger.Info("mocking campaign pause", zap.String("google_campaign_id", googleCampaignID))
	return nil
}
