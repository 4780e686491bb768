package models

import "time"

// Play status values for a game log.
const (
	StatusWantToPlay = "want_to_play"
	StatusPlayed     = "played"
)

// GameLog is one user's relationship to one game: status, rating,
// review text and top-5 favorite membership. One row per (user, game),
// created lazily on the first meaningful action and deleted only by an
// explicit remove.
type GameLog struct {
	ID               int64     `json:"id"`      // Primary key
	UserID           int64     `json:"user_id"` // FK to users(user_id)
	GameID           int64     `json:"game_id"` // FK to games(id)
	Status           string    `json:"status"`  // 'want_to_play' or 'played'
	Rating           *float64  `json:"rating"`  // half-star steps in [0.5, 5.0], nil when unrated
	Review           *string   `json:"review"`
	Favorite         bool      `json:"favorite"`
	FavoritePosition *int      `json:"favorite_position"` // 1..5 when favorite, nil otherwise
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GameLogWithGame joins the catalog row in for library reads.
type GameLogWithGame struct {
	GameLog
	Game Game `json:"game"`
}
