// Package games implements the game catalog resource: creation, partial
// update, paginated listing with consistent counts, and removal, with
// per-user mutation guards and a read-through cache on list reads.
package games

import (
	"time"

	"github.com/user/gamehub-go/users"
)

// Game is the stored game record.
//
// Invariants: Slug is globally unique and derived once at creation;
// CreatorID and CreatedAt are immutable; UpdatedAt never decreases and moves
// on every mutation.
type Game struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	CreatorID   int64     `json:"creator_id"`
	// Creator is filled by the populator from the users service; nil when
	// the relation was not requested or could not be resolved.
	Creator   *users.Profile `json:"creator,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// clone returns a deep copy so callers can never reach stored state.
func (g *Game) clone() *Game {
	if g == nil {
		return nil
	}
	cp := *g
	if g.Tags != nil {
		cp.Tags = append([]string(nil), g.Tags...)
	}
	if g.Creator != nil {
		creator := *g.Creator
		cp.Creator = &creator
	}
	return &cp
}
