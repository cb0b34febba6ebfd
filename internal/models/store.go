package models

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store implementations when no record matches
// the given identifier.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract for campaigns and ad groups. Lists are
// returned newest creation first. InsertAdGroup must fail when the owning
// campaign does not exist, and DeleteCampaign removes the campaign's ad
// groups in the same transaction.
type Store interface {
	InsertCampaign(ctx context.Context, c *Campaign) error
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	GetCampaign(ctx context.Context, id string) (*Campaign, error)
	UpdateCampaign(ctx context.Context, c *Campaign) error
	DeleteCampaign(ctx context.Context, id string) error

	CountAdGroups(ctx context.Context, campaignID string) (int, error)
	ListAdGroups(ctx context.Context, campaignID string) ([]AdGroup, error)
	InsertAdGroup(ctx context.Context, g *AdGroup) error
	GetAdGroup(ctx context.Context, id string) (*AdGroup, error)
	UpdateAdGroup(ctx context.Context, g *AdGroup) error
	DeleteAdGroup(ctx context.Context, id string) error
}
