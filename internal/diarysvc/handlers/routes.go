package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/me", h.MeHandler)

			r.Get("/catalog/search", h.SearchCatalogHandler)
			r.Post("/catalog/games", h.EnsureGameHandler)
			r.Get("/catalog/games/{gameID}", h.GetGameHandler)

			r.Get("/diary", h.DiaryHandler)
			r.Get("/games/{gameID}/state", h.GameStateHandler)
			r.Get("/games/{gameID}/lists", h.ListsContainingHandler)
			r.Post("/games/{gameID}/want-to-play", h.ToggleWantToPlayHandler)
			r.Post("/games/{gameID}/rating", h.RateHandler)
			r.Put("/games/{gameID}/review", h.ReviewHandler)
			r.Put("/games/{gameID}/favorite", h.FavoriteHandler)
			r.Delete("/games/{gameID}/log", h.RemoveLogHandler)

			r.Get("/favorites", h.FavoritesHandler)
			r.Post("/favorites/edit", h.EnterFavoritesEditHandler)
			r.Post("/favorites/edit/move", h.MoveFavoriteHandler)
			r.Post("/favorites/edit/remove", h.RemoveFavoriteBufferHandler)
			r.Post("/favorites/edit/done", h.ExitFavoritesEditHandler)

			r.Post("/lists", h.CreateListHandler)
			r.Get("/lists", h.ListsHandler)
			r.Get("/lists/{listID}", h.GetListHandler)
			r.Post("/lists/{listID}/items", h.AddListItemHandler)
			r.Delete("/lists/{listID}/items/{itemID}", h.RemoveListItemHandler)
			r.Post("/lists/{listID}/reorder", h.ReorderListHandler)
			r.Put("/lists/{listID}/ranked", h.SetListRankedHandler)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": 1,
		"exp":     expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
