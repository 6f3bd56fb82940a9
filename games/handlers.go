package games

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/gamehub-go/apperror"
	"github.com/user/gamehub-go/auth"
	"github.com/user/gamehub-go/config"
)

// GameHandler exposes the game resource over HTTP.
type GameHandler struct {
	service GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(service GameService) *GameHandler {
	return &GameHandler{service: service}
}

// RegisterRoutes mounts the game routes. Reads accept anonymous requests;
// mutations require a valid token.
func (h *GameHandler) RegisterRoutes(router chi.Router, authCfg *config.AuthConfig) {
	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalJWTMiddleware(authCfg))
		r.Get("/", h.listGames)
		r.Get("/user/{userID}", h.listGamesByUser)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(authCfg))
		r.Post("/", h.createGame)
		r.Put("/{gameID}", h.updateGame)
		r.Delete("/{slug}", h.removeGame)
	})
}

// createGame godoc
// @Summary Create a game
// @Description Creates a new game owned by the authenticated user.
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param game body CreateGameRequest true "New game"
// @Success 201 {object} GameEnvelope
// @Failure 400 {object} apperror.ErrorResponse "Validation failure"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Router /api/v1/games [post]
func (h *GameHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	envelope, err := h.service.Create(r.Context(), req, auth.ActorOrAnonymous(r.Context()))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, envelope)
}

// updateGame godoc
// @Summary Update a game
// @Description Applies a partial update to a game owned by the authenticated user.
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param gameID path int true "Game ID"
// @Param patch body UpdateGameRequest true "Fields to update"
// @Success 200 {object} GameEnvelope
// @Failure 400 {object} apperror.ErrorResponse "Validation failure"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Actor is not the creator"
// @Failure 404 {object} apperror.ErrorResponse "Game not found"
// @Router /api/v1/games/{gameID} [put]
func (h *GameHandler) updateGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid game id", err))
		return
	}

	var req UpdateGameRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	envelope, err := h.service.Update(r.Context(), id, req, auth.ActorOrAnonymous(r.Context()))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, envelope)
}

// listGames godoc
// @Summary List games
// @Description Lists games newest first, with an optional tag filter and the total match count.
// @Tags games
// @Produce json
// @Param tag query string false "Only games carrying this tag"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} GamesEnvelope
// @Router /api/v1/games [get]
func (h *GameHandler) listGames(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.service.List(r.Context(), listQueryFromRequest(r), auth.ActorOrAnonymous(r.Context()))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, envelope)
}

// listGamesByUser godoc
// @Summary List a user's games
// @Description Lists the games created by one user, newest first.
// @Tags games
// @Produce json
// @Param userID path int true "Creator's user ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} GamesEnvelope
// @Failure 400 {object} apperror.ErrorResponse "Invalid user id"
// @Router /api/v1/games/user/{userID} [get]
func (h *GameHandler) listGamesByUser(w http.ResponseWriter, r *http.Request) {
	creatorID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid user id", err))
		return
	}

	envelope, err := h.service.ListByUser(r.Context(), creatorID, listQueryFromRequest(r), auth.ActorOrAnonymous(r.Context()))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, envelope)
}

// removeGame godoc
// @Summary Remove a game
// @Description Hard-deletes a game owned by the authenticated user, addressed by slug.
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Game slug"
// @Success 200 {object} GameEnvelope "The removed record"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Actor is not the creator"
// @Failure 404 {object} apperror.ErrorResponse "Game not found"
// @Router /api/v1/games/{slug} [delete]
func (h *GameHandler) removeGame(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	envelope, err := h.service.Remove(r.Context(), slug, auth.ActorOrAnonymous(r.Context()))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, envelope)
}

// listQueryFromRequest parses the shared list query parameters. Malformed
// numbers fall back to the defaults rather than failing the read.
func listQueryFromRequest(r *http.Request) ListGamesQuery {
	q := ListGamesQuery{Tag: r.URL.Query().Get("tag")}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Offset = n
		}
	}
	return q
}
