package models

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore implements Store with mutex-protected maps. It backs handler
// and gateway tests and mirrors the Postgres ordering and referential rules.
type InMemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]Campaign
	adGroups  map[string]AdGroup
	seq       map[string]int
	next      int
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		campaigns: make(map[string]Campaign),
		adGroups:  make(map[string]AdGroup),
		seq:       make(map[string]int),
	}
}

// InsertCampaign stores a new campaign.
func (s *InMemoryStore) InsertCampaign(_ context.Context, c *Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = *c
	s.next++
	s.seq[c.ID] = s.next
	return nil
}

// ListCampaigns returns all campaigns, newest creation first.
func (s *InMemoryStore) ListCampaigns(_ context.Context) ([]Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs := make([]Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool { return s.seq[cs[i].ID] > s.seq[cs[j].ID] })
	return cs, nil
}

// GetCampaign returns the campaign matching id, or ErrNotFound.
func (s *InMemoryStore) GetCampaign(_ context.Context, id string) (*Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// UpdateCampaign replaces the stored campaign.
func (s *InMemoryStore) UpdateCampaign(_ context.Context, c *Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; !ok {
		return ErrNotFound
	}
	s.campaigns[c.ID] = *c
	return nil
}

// DeleteCampaign removes the campaign and all of its ad groups.
func (s *InMemoryStore) DeleteCampaign(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[id]; !ok {
		return ErrNotFound
	}
	delete(s.campaigns, id)
	for gid, g := range s.adGroups {
		if g.CampaignID == id {
			delete(s.adGroups, gid)
		}
	}
	return nil
}

// CountAdGroups returns the number of ad groups under a campaign.
func (s *InMemoryStore) CountAdGroups(_ context.Context, campaignID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.adGroups {
		if g.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

// ListAdGroups returns a campaign's ad groups, newest creation first.
func (s *InMemoryStore) ListAdGroups(_ context.Context, campaignID string) ([]AdGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gs := make([]AdGroup, 0)
	for _, g := range s.adGroups {
		if g.CampaignID == campaignID {
			gs = append(gs, g)
		}
	}
	sort.Slice(gs, func(i, j int) bool { return s.seq[gs[i].ID] > s.seq[gs[j].ID] })
	return gs, nil
}

// InsertAdGroup stores a new ad group; the owning campaign must exist.
func (s *InMemoryStore) InsertAdGroup(_ context.Context, g *AdGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[g.CampaignID]; !ok {
		return ErrNotFound
	}
	s.adGroups[g.ID] = *g
	s.next++
	s.seq[g.ID] = s.next
	return nil
}

// GetAdGroup returns the ad group matching id, or ErrNotFound.
func (s *InMemoryStore) GetAdGroup(_ context.Context, id string) (*AdGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.adGroups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

// UpdateAdGroup replaces the stored ad group.
func (s *InMemoryStore) UpdateAdGroup(_ context.Context, g *AdGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.adGroups[g.ID]; !ok {
		return ErrNotFound
	}
	s.adGroups[g.ID] = *g
	return nil
}

// DeleteAdGroup removes the ad group.
func (s *InMemoryStore) DeleteAdGroup(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.adGroups[id]; !ok {
		return ErrNotFound
	}
	delete(s.adGroups, id)
	return nil
}
