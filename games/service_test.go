package games

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/user/gamehub-go/apperror"
	"github.com/user/gamehub-go/auth"
	"github.com/user/gamehub-go/cache"
	"github.com/user/gamehub-go/users"
)

// countingStore wraps a Store and counts read calls, so tests can prove a
// cached response touched the backing store zero times.
type countingStore struct {
	Store
	finds  int
	counts int
}

func (c *countingStore) Find(ctx context.Context, q Query) ([]*Game, error) {
	c.finds++
	return c.Store.Find(ctx, q)
}

func (c *countingStore) Count(ctx context.Context, f Filter) (int64, error) {
	c.counts++
	return c.Store.Count(ctx, f)
}

func (c *countingStore) reads() int { return c.finds + c.counts }

func newTestService(t *testing.T) (GameService, *countingStore) {
	t.Helper()
	store := &countingStore{Store: NewMemoryStore()}
	creators := &stubCreators{profiles: map[int64]*users.Profile{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	}}
	return NewGameService(store, cache.NewMemoryCache(0), creators), store
}

func mustCreate(t *testing.T, svc GameService, actor auth.Actor, name string, tags ...string) *GameView {
	t.Helper()
	env, err := svc.Create(context.Background(), CreateGameRequest{
		Name:        name,
		Description: "A game called " + name + ".",
		Tags:        tags,
	}, actor)
	if err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
	if env.Game == nil {
		t.Fatalf("Create(%q) returned a nil game", name)
	}
	return env.Game
}

func TestCreateAssignsSlug(t *testing.T) {
	svc, _ := newTestService(t)
	actor := auth.Actor{ID: 1}

	g := mustCreate(t, svc, actor, "Chess")
	if !regexp.MustCompile(`^chess-[0-9a-z]{6}$`).MatchString(g.Slug) {
		t.Fatalf("slug = %q, want chess- plus 6 base36 characters", g.Slug)
	}
	if g.CreatorID != actor.ID {
		t.Errorf("CreatorID = %d, want %d", g.CreatorID, actor.ID)
	}
	if !g.UpdatedAt.Equal(g.CreatedAt) {
		t.Errorf("fresh game has UpdatedAt %v != CreatedAt %v", g.UpdatedAt, g.CreatedAt)
	}
	if g.Creator == nil || g.Creator.Username != "alice" {
		t.Errorf("Creator = %+v, want populated alice profile", g.Creator)
	}
	if !g.Editable {
		t.Error("creator's own game is not editable")
	}
}

func TestCreateSlugsAreDistinct(t *testing.T) {
	svc, _ := newTestService(t)
	actor := auth.Actor{ID: 1}

	a := mustCreate(t, svc, actor, "Chess")
	b := mustCreate(t, svc, actor, "Chess")
	if a.Slug == b.Slug {
		t.Fatalf("two games named Chess share slug %q", a.Slug)
	}
}

func TestCreateRequiresAuthentication(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateGameRequest{
		Name:        "Chess",
		Description: "x",
	}, auth.AnonymousActor)
	if !apperror.IsAuthError(err) {
		t.Fatalf("anonymous create returned %v, want an authentication error", err)
	}
}

func TestCreateValidationListsEveryViolation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateGameRequest{}, auth.Actor{ID: 1})
	if !apperror.IsValidationError(err) {
		t.Fatalf("empty payload returned %v, want a validation error", err)
	}
	appErr, ok := apperror.FromError(err)
	if !ok {
		t.Fatalf("error %v is not an AppError", err)
	}
	if len(appErr.Fields) < 2 {
		t.Fatalf("violations = %v, want both name and description reported", appErr.Fields)
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	svc, _ := newTestService(t)
	actor := auth.Actor{ID: 1}
	g := mustCreate(t, svc, actor, "Chess")

	desc := "Now with en passant."
	env, err := svc.Update(context.Background(), g.ID, UpdateGameRequest{Description: &desc}, actor)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := env.Game
	if got.Name != "Chess" {
		t.Errorf("Name = %q after description-only patch, want Chess", got.Name)
	}
	if got.Description != desc {
		t.Errorf("Description = %q, want %q", got.Description, desc)
	}
	if got.Slug != g.Slug {
		t.Errorf("Slug changed on update: %q -> %q", g.Slug, got.Slug)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateSlugSurvivesRename(t *testing.T) {
	svc, _ := newTestService(t)
	actor := auth.Actor{ID: 1}
	g := mustCreate(t, svc, actor, "Chess")

	name := "Shogi"
	env, err := svc.Update(context.Background(), g.ID, UpdateGameRequest{Name: &name}, actor)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if env.Game.Name != "Shogi" {
		t.Errorf("Name = %q, want Shogi", env.Game.Name)
	}
	if env.Game.Slug != g.Slug {
		t.Errorf("rename recomputed the slug: %q -> %q", g.Slug, env.Game.Slug)
	}
}

func TestUpdateByNonOwner(t *testing.T) {
	svc, store := newTestService(t)
	owner := auth.Actor{ID: 1}
	g := mustCreate(t, svc, owner, "Chess")

	name := "Stolen"
	_, err := svc.Update(context.Background(), g.ID, UpdateGameRequest{Name: &name}, auth.Actor{ID: 2})
	if !apperror.IsUnauthorizedError(err) {
		t.Fatalf("non-owner update returned %v, want a forbidden error", err)
	}

	// The record must be untouched.
	stored, err := store.FindOne(context.Background(), Filter{ID: &g.ID})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if stored.Name != "Chess" {
		t.Errorf("rejected update still changed the record: Name = %q", stored.Name)
	}
}

func TestUpdateMissingGame(t *testing.T) {
	svc, _ := newTestService(t)

	name := "x"
	_, err := svc.Update(context.Background(), 999, UpdateGameRequest{Name: &name}, auth.Actor{ID: 1})
	if !apperror.IsNotFound(err) {
		t.Fatalf("update of missing id returned %v, want not found", err)
	}
}

func TestListPagination(t *testing.T) {
	svc, _ := newTestService(t)
	actor := auth.Actor{ID: 1}
	for _, name := range []string{"Chess", "Go", "Shogi", "Checkers", "Backgammon"} {
		mustCreate(t, svc, actor, name)
	}

	env, err := svc.List(context.Background(), ListGamesQuery{Limit: 2, Offset: 0}, actor)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(env.Games) != 2 {
		t.Errorf("len(Games) = %d, want 2", len(env.Games))
	}
	if env.Total != 5 {
		t.Errorf("Total = %d, want 5 regardless of the page size", env.Total)
	}
}

func TestListTagFilter(t *testing.T) {
	svc, _ := newTestService(t)
	actor := auth.Actor{ID: 1}
	mustCreate(t, svc, actor, "Chess", "board", "strategy")
	mustCreate(t, svc, actor, "Poker", "cards")

	env, err := svc.List(context.Background(), ListGamesQuery{Tag: "board"}, actor)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if env.Total != 1 || len(env.Games) != 1 {
		t.Fatalf("tag filter returned %d games, total %d; want 1 and 1", len(env.Games), env.Total)
	}
	if env.Games[0].Name != "Chess" {
		t.Errorf("filtered game = %q, want Chess", env.Games[0].Name)
	}
}

func TestListByUser(t *testing.T) {
	svc, _ := newTestService(t)
	alice := auth.Actor{ID: 1}
	bob := auth.Actor{ID: 2}
	mustCreate(t, svc, alice, "Chess")
	mustCreate(t, svc, alice, "Go")
	mustCreate(t, svc, bob, "Poker")

	env, err := svc.ListByUser(context.Background(), alice.ID, ListGamesQuery{}, bob)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if env.Total != 2 {
		t.Fatalf("Total = %d, want 2", env.Total)
	}
	for _, g := range env.Games {
		if g.CreatorID != alice.ID {
			t.Errorf("game %q belongs to creator %d", g.Name, g.CreatorID)
		}
		if g.Editable {
			t.Errorf("game %q is editable for a non-owner", g.Name)
		}
	}
}

func TestListServesRepeatsFromCache(t *testing.T) {
	svc, store := newTestService(t)
	actor := auth.Actor{ID: 1}
	mustCreate(t, svc, actor, "Chess")

	q := ListGamesQuery{Limit: 10}
	first, err := svc.List(context.Background(), q, actor)
	if err != nil {
		t.Fatalf("first List: %v", err)
	}
	before := store.reads()

	second, err := svc.List(context.Background(), q, actor)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if got := store.reads() - before; got != 0 {
		t.Fatalf("cached List hit the store %d times, want 0", got)
	}
	if second.Total != 1 {
		t.Errorf("cached Total = %d, want 1", second.Total)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("repeated List responses differ:\n%s\n%s", a, b)
	}
}

func TestMutationInvalidatesListCache(t *testing.T) {
	svc, store := newTestService(t)
	actor := auth.Actor{ID: 1}
	mustCreate(t, svc, actor, "Chess")

	q := ListGamesQuery{Limit: 10}
	if _, err := svc.List(context.Background(), q, actor); err != nil {
		t.Fatalf("List: %v", err)
	}
	mustCreate(t, svc, actor, "Go")
	before := store.reads()

	env, err := svc.List(context.Background(), q, actor)
	if err != nil {
		t.Fatalf("List after create: %v", err)
	}
	if store.reads() == before {
		t.Fatal("List after a mutation was served from cache")
	}
	if env.Total != 2 {
		t.Errorf("Total = %d after second create, want 2", env.Total)
	}
}

func TestListCacheKeyedByActor(t *testing.T) {
	svc, store := newTestService(t)
	alice := auth.Actor{ID: 1}
	mustCreate(t, svc, alice, "Chess")

	q := ListGamesQuery{Limit: 10}
	if _, err := svc.List(context.Background(), q, alice); err != nil {
		t.Fatalf("List as alice: %v", err)
	}
	before := store.reads()

	// A different actor must not read alice's cached view: Editable
	// differs per actor.
	env, err := svc.List(context.Background(), q, auth.AnonymousActor)
	if err != nil {
		t.Fatalf("List as anonymous: %v", err)
	}
	if store.reads() == before {
		t.Fatal("anonymous List reused another actor's cache entry")
	}
	if env.Games[0].Editable {
		t.Error("anonymous view reports the game editable")
	}
}

// brokenCache fails every operation, standing in for an unreachable backend.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache backend unreachable")
}

func (brokenCache) Set(context.Context, string, []byte, []string) error {
	return errors.New("cache backend unreachable")
}

func (brokenCache) InvalidateGroup(context.Context, string) error {
	return errors.New("cache backend unreachable")
}

func TestBrokenCacheDegradesToStoreReads(t *testing.T) {
	store := &countingStore{Store: NewMemoryStore()}
	creators := &stubCreators{profiles: map[int64]*users.Profile{
		1: {ID: 1, Username: "alice"},
	}}
	svc := NewGameService(store, brokenCache{}, creators)
	actor := auth.Actor{ID: 1}

	// Mutations succeed even though their invalidation fails.
	mustCreate(t, svc, actor, "Chess")

	q := ListGamesQuery{Limit: 10}
	env, err := svc.List(context.Background(), q, actor)
	if err != nil {
		t.Fatalf("List with a broken cache: %v", err)
	}
	if env.Total != 1 {
		t.Fatalf("Total = %d, want 1", env.Total)
	}

	// Every read goes to the store: a broken cache is a permanent miss,
	// never a failed request.
	before := store.reads()
	if _, err := svc.List(context.Background(), q, actor); err != nil {
		t.Fatalf("repeat List with a broken cache: %v", err)
	}
	if got := store.reads() - before; got == 0 {
		t.Fatal("repeat List was not served from the store")
	}
}

func TestRemove(t *testing.T) {
	svc, store := newTestService(t)
	actor := auth.Actor{ID: 1}
	g := mustCreate(t, svc, actor, "Chess")

	env, err := svc.Remove(context.Background(), g.Slug, actor)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if env.Game == nil || env.Game.Slug != g.Slug {
		t.Fatalf("Remove returned %+v, want the removed record", env.Game)
	}

	stored, err := store.FindOne(context.Background(), Filter{Slug: &g.Slug})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if stored != nil {
		t.Fatal("game still present after Remove")
	}

	if _, err := svc.Remove(context.Background(), g.Slug, actor); !apperror.IsNotFound(err) {
		t.Fatalf("second Remove returned %v, want not found", err)
	}
}

func TestRemoveByNonOwner(t *testing.T) {
	svc, store := newTestService(t)
	owner := auth.Actor{ID: 1}
	g := mustCreate(t, svc, owner, "Chess")

	_, err := svc.Remove(context.Background(), g.Slug, auth.Actor{ID: 2})
	if !apperror.IsUnauthorizedError(err) {
		t.Fatalf("non-owner remove returned %v, want a forbidden error", err)
	}
	stored, err := store.FindOne(context.Background(), Filter{Slug: &g.Slug})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if stored == nil {
		t.Fatal("rejected remove still deleted the game")
	}
}

func TestRemoveUnknownSlug(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Remove(context.Background(), "chess-zzzzzz", auth.Actor{ID: 1})
	if !apperror.IsNotFound(err) {
		t.Fatalf("Remove of unknown slug returned %v, want not found", err)
	}
}
