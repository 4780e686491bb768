package handlers

import (
	"net/http"
)

// SearchCatalogHandler proxies a search to the metadata provider.
func (h *Handler) SearchCatalogHandler(w http.ResponseWriter, r *http.Request) {
	results, err := h.CatalogService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, results)
}

// EnsureGameHandler resolves a provider id to a local catalog row,
// creating it on first reference.
func (h *Handler) EnsureGameHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalID int64 `json:"external_id"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	g, err := h.CatalogService.EnsureGame(r.Context(), req.ExternalID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

// GetGameHandler reads one catalog row.
func (h *Handler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := paramID(r, "gameID")
	if err != nil {
		h.fail(w, err)
		return
	}

	g, err := h.CatalogService.GetGame(r.Context(), gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

// MeHandler returns the authenticated user's profile.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, u)
}
