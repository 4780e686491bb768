package handlers

import (
	"net/http"

	"github.com/playloggd/diary-services/internal/comm"
)

// CreateListHandler creates a named list for the caller.
func (h *Handler) CreateListHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		IsPublic    bool    `json:"is_public"`
		IsRanked    bool    `json:"is_ranked"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	l, err := h.ListService.CreateList(r.Context(), userID, req.Name, req.Description, req.IsPublic, req.IsRanked)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Broker.ListActivity(userID, comm.VerbListMade, l.ID, l.Name)
	h.created(w, l)
}

// ListsHandler returns the caller's lists.
func (h *Handler) ListsHandler(w http.ResponseWriter, r *http.Request) {
	lists, err := h.ListService.Lists(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, lists)
}

// GetListHandler returns one list with its ordered items.
func (h *Handler) GetListHandler(w http.ResponseWriter, r *http.Request) {
	listID, err := paramID(r, "listID")
	if err != nil {
		h.fail(w, err)
		return
	}

	l, items, err := h.ListService.GetList(r.Context(), h.userID(r), listID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, map[string]interface{}{"list": l, "items": items})
}

// AddListItemHandler appends a game to the list.
func (h *Handler) AddListItemHandler(w http.ResponseWriter, r *http.Request) {
	listID, err := paramID(r, "listID")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		GameID int64   `json:"game_id"`
		Notes  *string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	item, err := h.ListService.AddItem(r.Context(), userID, listID, req.GameID, req.Notes)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Broker.ListActivity(userID, comm.VerbListEdited, listID, "")
	h.created(w, item)
}

// RemoveListItemHandler removes an item and compacts the positions.
func (h *Handler) RemoveListItemHandler(w http.ResponseWriter, r *http.Request) {
	listID, err := paramID(r, "listID")
	if err != nil {
		h.fail(w, err)
		return
	}
	itemID, err := paramID(r, "itemID")
	if err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	if err := h.ListService.RemoveItem(r.Context(), userID, listID, itemID); err != nil {
		h.fail(w, err)
		return
	}

	h.Broker.ListActivity(userID, comm.VerbListEdited, listID, "")
	h.ok(w, nil)
}

// ReorderListHandler moves one item to a new index.
func (h *Handler) ReorderListHandler(w http.ResponseWriter, r *http.Request) {
	listID, err := paramID(r, "listID")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		FromIndex int `json:"from_index"`
		ToIndex   int `json:"to_index"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	userID := h.userID(r)
	items, err := h.ListService.Reorder(r.Context(), userID, listID, req.FromIndex, req.ToIndex)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Broker.ListActivity(userID, comm.VerbListEdited, listID, "")
	h.ok(w, items)
}

// SetListRankedHandler toggles the ranked display flag.
func (h *Handler) SetListRankedHandler(w http.ResponseWriter, r *http.Request) {
	listID, err := paramID(r, "listID")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req struct {
		IsRanked bool `json:"is_ranked"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.ListService.SetRanked(r.Context(), h.userID(r), listID, req.IsRanked); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}

// ListsContainingHandler reports which of the caller's lists hold the
// game.
func (h *Handler) ListsContainingHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, h.ListService.ListsContaining(r.Context(), h.userID(r), gameID))
}
