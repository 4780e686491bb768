package models

import "time"

// List is a user-owned named ordered collection of games. IsRanked is a
// display flag only and never affects storage order.
type List struct {
	ID          int64     `json:"id"`      // Primary key
	UserID      int64     `json:"user_id"` // Owner, only the owner mutates
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"is_public"`
	IsRanked    bool      `json:"is_ranked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListItem is one (list, game) membership. Positions within a list are
// contiguous zero-based integers at rest.
type ListItem struct {
	ID        int64     `json:"id"`      // Primary key
	ListID    int64     `json:"list_id"` // FK to lists(id)
	GameID    int64     `json:"game_id"` // FK to games(id)
	Position  int       `json:"position"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListMembership reports whether a game appears in one of a user's
// lists, used to render the multi-list membership toggles.
type ListMembership struct {
	List     List `json:"list"`
	Contains bool `json:"contains"`
}
