package models

import (
	"database/sql"
	"time"
)

// Game is a catalog row, upserted from the metadata provider the first
// time any user logs or lists the game.
type Game struct {
	ID          int64          `json:"id"`          // Primary key
	ExternalID  int64          `json:"external_id"` // Metadata provider id, unique
	Title       string         `json:"title"`
	CoverURL    sql.NullString `json:"cover_url"`
	ReleaseYear sql.NullInt32  `json:"release_year"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
