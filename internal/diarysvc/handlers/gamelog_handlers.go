package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/playloggd/diary-services/internal/comm"
	"github.com/playloggd/diary-services/internal/diarysvc/curation"
)

func paramID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &curation.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

// gameTitle resolves a title for activity events, best effort.
func (h *Handler) gameTitle(ctx context.Context, gameID int64) string {
	g, err := h.CatalogService.GetGame(ctx, gameID)
	if err != nil {
		return ""
	}
	return g.Title
}

// ToggleWantToPlayHandler flips want-to-play for the game.
func (h *Handler) ToggleWantToPlayHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	state, err := h.GameLogService.ToggleWantToPlay(r.Context(), userID, gameID)
	if err != nil {
		h.fail(w, err)
		return
	}

	if state.Kind == curation.StateWantToPlay {
		h.Broker.GameActivity(userID, comm.VerbLogged, gameID, h.gameTitle(r.Context(), gameID), 0)
	}
	h.ok(w, state)
}

// RateHandler applies one star click.
func (h *Handler) RateHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		Star int `json:"star"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	state, err := h.GameLogService.ClickStar(r.Context(), userID, gameID, req.Star)
	if err != nil {
		h.fail(w, err)
		return
	}

	if state.Rated() {
		h.Broker.GameActivity(userID, comm.VerbRated, gameID, h.gameTitle(r.Context(), gameID), state.Rating)
	}
	h.ok(w, state)
}

// ReviewHandler writes or clears the review text.
func (h *Handler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	state, err := h.GameLogService.SetReview(r.Context(), userID, gameID, req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}

	if state.Review != "" {
		h.Broker.GameActivity(userID, comm.VerbReviewed, gameID, h.gameTitle(r.Context(), gameID), 0)
	}
	h.ok(w, state)
}

// FavoriteHandler turns favorite membership on or off.
func (h *Handler) FavoriteHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	state, err := h.GameLogService.SetFavorite(r.Context(), userID, gameID, req.Favorite)
	if err != nil {
		h.fail(w, err)
		return
	}

	verb := comm.VerbUnfavorite
	if state.Favorite {
		verb = comm.VerbFavorited
	}
	h.Broker.GameActivity(userID, verb, gameID, h.gameTitle(r.Context(), gameID), 0)
	h.ok(w, state)
}

// RemoveLogHandler deletes the log outright.
func (h *Handler) RemoveLogHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	if err := h.GameLogService.Remove(r.Context(), userID, gameID); err != nil {
		h.fail(w, err)
		return
	}

	h.Broker.GameActivity(userID, comm.VerbRemoved, gameID, h.gameTitle(r.Context(), gameID), 0)
	h.ok(w, nil)
}

// GameStateHandler returns the caller's current state for a game.
func (h *Handler) GameStateHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	state, err := h.GameLogService.GetState(r.Context(), h.userID(r), gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, state)
}

// DiaryHandler returns the caller's full library.
func (h *Handler) DiaryHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := h.GameLogService.Diary(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, logs)
}
