package handlers

import (
	"net/http"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
)

// FavoritesHandler returns the caller's ranked favorites.
func (h *Handler) FavoritesHandler(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.FavoritesService.Favorites(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, favorites)
}

// EnterFavoritesEditHandler opens (or resumes) the edit session.
func (h *Handler) EnterFavoritesEditHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.FavoritesService.EnterEdit(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, entries)
}

// MoveFavoriteHandler moves the buffered entry at index one slot up or
// down.
func (h *Handler) MoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index     int    `json:"index"`
		Direction string `json:"direction"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	var (
		entries []curation.FavoriteEntry
		err     error
	)
	switch req.Direction {
	case "up":
		entries, err = h.FavoritesService.MoveUp(r.Context(), h.userID(r), req.Index)
	case "down":
		entries, err = h.FavoritesService.MoveDown(r.Context(), h.userID(r), req.Index)
	default:
		err = &curation.ValidationError{Field: "direction", Reason: "must be up or down"}
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, entries)
}

// RemoveFavoriteBufferHandler drops a log from the edit buffer.
func (h *Handler) RemoveFavoriteBufferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LogID int64 `json:"log_id"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	entries, err := h.FavoritesService.RemoveFromBuffer(r.Context(), h.userID(r), req.LogID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, entries)
}

// ExitFavoritesEditHandler commits any pending changes and closes the
// session.
func (h *Handler) ExitFavoritesEditHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.FavoritesService.ExitEdit(r.Context(), h.userID(r)); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}
