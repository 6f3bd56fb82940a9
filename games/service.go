package games

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/gamehub-go/apperror"
	"github.com/user/gamehub-go/auth"
	"github.com/user/gamehub-go/cache"
)

// CacheGroupGames is the invalidation group shared by every cached list
// response. Any mutation clears the whole group; there is no finer-grained
// invalidation by id, filter or user.
const CacheGroupGames = "games"

const (
	defaultLimit = 20
	maxLimit     = 100
)

// GameService defines the game resource operations.
type GameService interface {
	Create(ctx context.Context, req CreateGameRequest, actor auth.Actor) (*GameEnvelope, error)
	Update(ctx context.Context, id int64, req UpdateGameRequest, actor auth.Actor) (*GameEnvelope, error)
	List(ctx context.Context, q ListGamesQuery, actor auth.Actor) (*GamesEnvelope, error)
	ListByUser(ctx context.Context, creatorID int64, q ListGamesQuery, actor auth.Actor) (*GamesEnvelope, error)
	Remove(ctx context.Context, slug string, actor auth.Actor) (*GameEnvelope, error)
}

type gameServiceImpl struct {
	store Store
	cache cache.Cache
	pop   *Populator
}

// NewGameService creates a GameService over the given store, cache and
// creator lookup.
func NewGameService(store Store, c cache.Cache, creators CreatorLookup) GameService {
	return &gameServiceImpl{
		store: store,
		cache: c,
		pop:   NewPopulator(creators),
	}
}

// Create validates and stores a new game owned by the actor.
func (s *gameServiceImpl) Create(ctx context.Context, req CreateGameRequest, actor auth.Actor) (*GameEnvelope, error) {
	if actor.Anonymous {
		return nil, apperror.NewAuthError("authentication required to create a game", nil)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &Game{
		Slug:        NewSlug(req.Name),
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		CreatorID:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.store.Insert(ctx, g)
	if err != nil {
		return nil, err
	}

	s.pop.Populate(ctx, []*Game{created}, RelationCreator)
	s.invalidate(ctx)
	return WrapGame(created, actor), nil
}

// Update applies a partial patch to a game the actor owns. Fields absent
// from the patch are untouched.
func (s *gameServiceImpl) Update(ctx context.Context, id int64, req UpdateGameRequest, actor auth.Actor) (*GameEnvelope, error) {
	if actor.Anonymous {
		return nil, apperror.NewAuthError("authentication required to update a game", nil)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.store.FindOne(ctx, Filter{ID: &id})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("game with ID %d not found", id), nil)
	}
	if existing.CreatorID != actor.ID {
		return nil, apperror.NewUnauthorizedError("only the creator can modify a game", nil)
	}

	// updated_at never decreases, even against clock skew.
	now := time.Now().UTC()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Nanosecond)
	}

	updated, err := s.store.UpdateByID(ctx, id, Patch{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Removed between the ownership check and the update.
		return nil, apperror.NewNotFoundError(fmt.Sprintf("game with ID %d not found", id), nil)
	}

	s.pop.Populate(ctx, []*Game{updated}, RelationCreator)
	s.invalidate(ctx)
	return WrapGame(updated, actor), nil
}

// List returns the filtered, paginated games together with the total count
// of matches, through the read-through cache.
func (s *gameServiceImpl) List(ctx context.Context, q ListGamesQuery, actor auth.Actor) (*GamesEnvelope, error) {
	filter := Filter{}
	if q.Tag != "" {
		tag := q.Tag
		filter.Tag = &tag
	}
	return s.list(ctx, filter, q, actor,
		cache.Param{Name: "tag", Value: q.Tag},
	)
}

// ListByUser is List constrained to one creator.
func (s *gameServiceImpl) ListByUser(ctx context.Context, creatorID int64, q ListGamesQuery, actor auth.Actor) (*GamesEnvelope, error) {
	filter := Filter{CreatorID: &creatorID}
	if q.Tag != "" {
		tag := q.Tag
		filter.Tag = &tag
	}
	return s.list(ctx, filter, q, actor,
		cache.Param{Name: "tag", Value: q.Tag},
		cache.Param{Name: "creator", Value: strconv.FormatInt(creatorID, 10)},
	)
}

// list is the shared read path. The filter is frozen before either query
// starts: both the row fetch and the count receive the same value, so the
// pair can never drift apart. Rows and count run concurrently; if either
// fails the whole read fails.
func (s *gameServiceImpl) list(ctx context.Context, filter Filter, q ListGamesQuery, actor auth.Actor, params ...cache.Param) (*GamesEnvelope, error) {
	limit, offset := normalizePagination(q.Limit, q.Offset)

	params = append(params,
		cache.Param{Name: "limit", Value: strconv.Itoa(limit)},
		cache.Param{Name: "offset", Value: strconv.Itoa(offset)},
	)
	key := cache.Key("games.list", actor.String(), params...)

	if payload, hit, err := s.cache.Get(ctx, key); err != nil {
		// A broken cache degrades to a miss, never to a failed read.
		log.Printf("games: cache get failed: %v", err)
	} else if hit {
		var envelope GamesEnvelope
		if err := json.Unmarshal(payload, &envelope); err == nil {
			return &envelope, nil
		}
		log.Printf("games: discarding undecodable cache entry for key %q", key)
	}

	var (
		rows  []*Game
		total int64
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		rows, err = s.store.Find(egCtx, Query{Filter: filter, Limit: limit, Offset: offset})
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.store.Count(egCtx, filter)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	s.pop.Populate(ctx, rows, RelationCreator)
	envelope := WrapGames(rows, total, actor)

	if payload, err := json.Marshal(envelope); err == nil {
		if err := s.cache.Set(ctx, key, payload, []string{CacheGroupGames}); err != nil {
			log.Printf("games: cache set failed: %v", err)
		}
	}
	return envelope, nil
}

// Remove hard-deletes the game with the given slug, returning the removed
// record.
func (s *gameServiceImpl) Remove(ctx context.Context, slug string, actor auth.Actor) (*GameEnvelope, error) {
	if actor.Anonymous {
		return nil, apperror.NewAuthError("authentication required to remove a game", nil)
	}

	existing, err := s.store.FindOne(ctx, Filter{Slug: &slug})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("game with slug %q not found", slug), nil)
	}
	if existing.CreatorID != actor.ID {
		return nil, apperror.NewUnauthorizedError("only the creator can remove a game", nil)
	}

	removed, err := s.store.RemoveByID(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("game with slug %q not found", slug), nil)
	}

	s.invalidate(ctx)
	return WrapGame(removed, actor), nil
}

// invalidate clears the shared group after a mutation. The store write has
// already succeeded at this point; a failed invalidation only means stale
// reads until the next successful one, so it is logged, not returned.
func (s *gameServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateGroup(ctx, CacheGroupGames); err != nil {
		log.Printf("games: cache invalidation failed: %v", err)
	}
}

// normalizePagination applies the defaults and bounds before anything is
// cached or queried, so the cache key always reflects the effective values.
func normalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ GameService = (*gameServiceImpl)(nil)
