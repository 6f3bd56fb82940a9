package games

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store backed by a mutex-guarded map. It backs
// the test suite and small single-node deployments; every record that
// crosses its boundary is cloned, so callers cannot mutate stored state in
// place.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*Game
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*Game)}
}

// Insert stores a new game and assigns its id.
func (s *MemoryStore) Insert(_ context.Context, g *Game) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := g.clone()
	stored.ID = s.nextID
	stored.Creator = nil // relations are never persisted
	s.byID[stored.ID] = stored
	return stored.clone(), nil
}

// FindOne returns the first game matching the filter, or nil.
func (s *MemoryStore) FindOne(_ context.Context, f Filter) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.sorted() {
		if matches(g, f) {
			return g.clone(), nil
		}
	}
	return nil, nil
}

// Find returns the filtered page, newest first.
func (s *MemoryStore) Find(_ context.Context, q Query) ([]*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Game
	for _, g := range s.sorted() {
		if matches(g, q.Filter) {
			matched = append(matched, g)
		}
	}

	if q.Offset >= len(matched) {
		return []*Game{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	page := make([]*Game, len(matched))
	for i, g := range matched {
		page[i] = g.clone()
	}
	return page, nil
}

// Count returns the number of games matching the bare filter.
func (s *MemoryStore) Count(_ context.Context, f Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, g := range s.byID {
		if matches(g, f) {
			n++
		}
	}
	return n, nil
}

// UpdateByID applies a partial merge to the stored game.
func (s *MemoryStore) UpdateByID(_ context.Context, id int64, p Patch) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Tags != nil {
		g.Tags = append([]string(nil), (*p.Tags)...)
	}
	g.UpdatedAt = p.UpdatedAt
	return g.clone(), nil
}

// RemoveByID hard-deletes the game, returning the removed record.
func (s *MemoryStore) RemoveByID(_ context.Context, id int64) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	delete(s.byID, id)
	return g.clone(), nil
}

// sorted returns the stored games newest first. Callers must hold a lock.
func (s *MemoryStore) sorted() []*Game {
	all := make([]*Game, 0, len(s.byID))
	for _, g := range s.byID {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all
}

// matches reports whether g satisfies every set field of the filter.
func matches(g *Game, f Filter) bool {
	if f.ID != nil && g.ID != *f.ID {
		return false
	}
	if f.Slug != nil && g.Slug != *f.Slug {
		return false
	}
	if f.CreatorID != nil && g.CreatorID != *f.CreatorID {
		return false
	}
	if f.Tag != nil {
		found := false
		for _, t := range g.Tags {
			if t == *f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var _ Store = (*MemoryStore)(nil)
