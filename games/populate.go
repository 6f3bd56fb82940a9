package games

import (
	"context"
	"log"

	"github.com/user/gamehub-go/users"
)

// RelationCreator is the name of the creator relation.
const RelationCreator = "creator"

// creatorFields is the projection requested for embedded creators. The id
// always comes back; anything else must be listed here.
var creatorFields = []string{"username"}

// CreatorLookup is the slice of the users service the populator needs: one
// batched, field-projected read.
type CreatorLookup interface {
	Lookup(ctx context.Context, ids []int64, fields []string) (map[int64]*users.Profile, error)
}

// resolver attaches one named relation onto a batch of games.
type resolver func(ctx context.Context, batch []*Game) error

// Populator resolves foreign-key fields into embedded sub-objects. Relations
// are registered by name, so adding a relation means adding a resolver, not
// another enrichment code path.
//
// Population is non-fatal by contract: a failed lookup leaves the relation
// nil on the affected games and the read proceeds.
type Populator struct {
	resolvers map[string]resolver
}

// NewPopulator builds a Populator wired to the given creator lookup.
func NewPopulator(creators CreatorLookup) *Populator {
	p := &Populator{resolvers: make(map[string]resolver)}
	p.resolvers[RelationCreator] = func(ctx context.Context, batch []*Game) error {
		return resolveCreators(ctx, creators, batch)
	}
	return p
}

// Populate resolves the named relations onto the batch. Failures are logged
// and swallowed; the batch is returned with whatever could be resolved.
func (p *Populator) Populate(ctx context.Context, batch []*Game, relations ...string) {
	if len(batch) == 0 {
		return
	}
	for _, rel := range relations {
		res, ok := p.resolvers[rel]
		if !ok {
			log.Printf("games: populate: unknown relation %q", rel)
			continue
		}
		if err := res(ctx, batch); err != nil {
			log.Printf("games: populate: relation %q: %v", rel, err)
		}
	}
}

// resolveCreators collects the distinct creator ids across the batch, issues
// one projected lookup, and attaches the results. Games whose creator does
// not resolve keep a nil Creator.
func resolveCreators(ctx context.Context, creators CreatorLookup, batch []*Game) error {
	seen := make(map[int64]struct{}, len(batch))
	ids := make([]int64, 0, len(batch))
	for _, g := range batch {
		if _, ok := seen[g.CreatorID]; ok {
			continue
		}
		seen[g.CreatorID] = struct{}{}
		ids = append(ids, g.CreatorID)
	}

	profiles, err := creators.Lookup(ctx, ids, creatorFields)
	if err != nil {
		return err
	}
	for _, g := range batch {
		g.Creator = profiles[g.CreatorID]
	}
	return nil
}
