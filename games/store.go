package games

import (
	"context"
	"time"
)

// Filter selects games by exact-match criteria. Nil fields do not
// constrain the result. Tag is a membership test against the game's tag
// list. Filter is a small value type on purpose: the service copies it once
// per request and hands the same copy to both the row fetch and the count
// query, so the two can never observe different criteria.
type Filter struct {
	ID        *int64
	Slug      *string
	CreatorID *int64
	Tag       *string
}

// Query is a filtered, paginated row fetch. Results are always ordered
// newest first (created_at descending, id descending as a tiebreak).
type Query struct {
	Filter Filter
	Limit  int
	Offset int
}

// Patch is a partial update. Nil fields are left untouched; UpdatedAt is
// always applied.
type Patch struct {
	Name        *string
	Description *string
	Tags        *[]string
	UpdatedAt   time.Time
}

// Store is the entity store contract the game service is written against.
// Pagination never reaches Count: it takes the bare filter.
//
// FindOne, UpdateByID and RemoveByID return (nil, nil) when no record
// matches; translating that into a NotFound error is the service's job.
type Store interface {
	Insert(ctx context.Context, g *Game) (*Game, error)
	FindOne(ctx context.Context, f Filter) (*Game, error)
	Find(ctx context.Context, q Query) ([]*Game, error)
	Count(ctx context.Context, f Filter) (int64, error)
	UpdateByID(ctx context.Context, id int64, p Patch) (*Game, error)
	RemoveByID(ctx context.Context, id int64) (*Game, error)
}
