package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_CampaignOrderingAndCascade(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.InsertCampaign(ctx, &Campaign{ID: "a", Name: "A"}))
	require.NoError(t, s.InsertCampaign(ctx, &Campaign{ID: "b", Name: "B"}))

	list, err := s.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)

	require.NoError(t, s.InsertAdGroup(ctx, &AdGroup{ID: "g1", CampaignID: "a", Name: "G1"}))
	require.NoError(t, s.InsertAdGroup(ctx, &AdGroup{ID: "g2", CampaignID: "a", Name: "G2"}))

	n, err := s.CountAdGroups(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteCampaign(ctx, "a"))

	_, err = s.GetCampaign(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetAdGroup(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetAdGroup(ctx, "g2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_InsertAdGroupRequiresCampaign(t *testing.T) {
	s := NewInMemoryStore()
	err := s.InsertAdGroup(context.Background(), &AdGroup{ID: "g", CampaignID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_UpdateMissingRecords(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateCampaign(ctx, &Campaign{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, s.UpdateAdGroup(ctx, &AdGroup{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteAdGroup(ctx, "nope"), ErrNotFound)
}
