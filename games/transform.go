package games

import "github.com/user/gamehub-go/auth"

// GameView is a game shaped for a specific actor. Editable is the only
// per-user adjustment: true when the actor owns the record.
type GameView struct {
	*Game
	Editable bool `json:"editable"`
}

// GameEnvelope wraps a single game. A nil game serializes as
// {"game": null}; deciding that null means not-found is the caller's job.
type GameEnvelope struct {
	Game *GameView `json:"game"`
}

// GamesEnvelope wraps a list response with its total count. Total counts
// every record matching the filter, not just the returned page.
type GamesEnvelope struct {
	Games []*GameView `json:"games"`
	Total int64       `json:"total"`
}

// WrapGame shapes a single entity for the given actor.
func WrapGame(g *Game, actor auth.Actor) *GameEnvelope {
	return &GameEnvelope{Game: viewFor(g, actor)}
}

// WrapGames shapes a list for the given actor. An empty list serializes as
// [] rather than null.
func WrapGames(batch []*Game, total int64, actor auth.Actor) *GamesEnvelope {
	views := make([]*GameView, 0, len(batch))
	for _, g := range batch {
		views = append(views, viewFor(g, actor))
	}
	return &GamesEnvelope{Games: views, Total: total}
}

func viewFor(g *Game, actor auth.Actor) *GameView {
	if g == nil {
		return nil
	}
	return &GameView{
		Game:     g,
		Editable: !actor.Anonymous && actor.ID == g.CreatorID,
	}
}
