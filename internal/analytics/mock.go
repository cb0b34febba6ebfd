package analytics

import (
	"context"
	"sync"
	"time"
)

var _ Service = (*MockAnalytics)(nil)

// MockAnalytics is an in-memory Service used when no ClickHouse DSN is
// configured, and in tests. Events are kept in insertion order.
type MockAnalytics struct {
	mu     sync.Mutex
	events []EventRecord
}

// NewMockAnalytics creates a new mock analytics instance.
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

// RecordEvent appends the event to the in-memory log.
func (m *MockAnalytics) RecordEvent(_ context.Context, eventType, campaignID, adGroupID, googleCampaignID, status, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := EventRecord{
		Timestamp:  time.Now(),
		EventType:  eventType,
		CampaignID: campaignID,
	}
	if adGroupID != "" {
		ev.AdGroupID = &adGroupID
	}
	if googleCampaignID != "" {
		ev.GoogleCampaignID = &googleCampaignID
	}
	if status != "" {
		ev.Status = &status
	}
	if detail != "" {
		ev.Detail = &detail
	}
	m.events = append(m.events, ev)
	return nil
}

// EventsByCampaign returns recorded events for a campaign.
func (m *MockAnalytics) EventsByCampaign(_ context.Context, campaignID string) ([]EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EventRecord
	for _, ev := range m.events {
		if ev.CampaignID == campaignID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Close is a no-op.
func (m *MockAnalytics) Close() {}
