package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAnalytics_RecordAndQuery(t *testing.T) {
	m := NewMockAnalytics()
	ctx := context.Background()

	require.NoError(t, m.RecordEvent(ctx, EventCampaignCreated, "c1", "", "", "DRAFT", "Summer Sale"))
	require.NoError(t, m.RecordEvent(ctx, EventCampaignPublished, "c1", "", "g-123", "PUBLISHED", ""))
	require.NoError(t, m.RecordEvent(ctx, EventCampaignCreated, "c2", "", "", "DRAFT", ""))

	events, err := m.EventsByCampaign(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, EventCampaignCreated, events[0].EventType)
	require.NotNil(t, events[0].Detail)
	assert.Equal(t, "Summer Sale", *events[0].Detail)
	assert.Nil(t, events[0].GoogleCampaignID)

	assert.Equal(t, EventCampaignPublished, events[1].EventType)
	require.NotNil(t, events[1].GoogleCampaignID)
	assert.Equal(t, "g-123", *events[1].GoogleCampaignID)

	events, err = m.EventsByCampaign(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, events)
}
