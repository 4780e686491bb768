package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/playloggd/diary-services/internal/diarysvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameStore is the record-store contract for catalog rows.
type GameStore interface {
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.Game, error)
	Upsert(ctx context.Context, g *models.Game) (*models.Game, error)
}

type gameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) GameStore {
	return &gameStore{db: db}
}

const gameColumns = `id, external_id, title, cover_url, release_year, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID,
		&g.ExternalID,
		&g.Title,
		&g.CoverURL,
		&g.ReleaseYear,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return g, nil
}

func (s *gameStore) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE id = $1
	`, id)

	return scanGame(row)
}

func (s *gameStore) GetByExternalID(ctx context.Context, externalID int64) (*models.Game, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE external_id = $1
	`, externalID)

	return scanGame(row)
}

// Upsert keys on the metadata provider id so two users logging the
// same game race into a single catalog row.
func (s *gameStore) Upsert(ctx context.Context, g *models.Game) (*models.Game, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO games (external_id, title, cover_url, release_year)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT unique_game_external DO UPDATE
		SET title = EXCLUDED.title,
		    cover_url = EXCLUDED.cover_url,
		    release_year = EXCLUDED.release_year,
		    updated_at = now()
		RETURNING `+gameColumns+`
	`, g.ExternalID, g.Title, g.CoverURL, g.ReleaseYear)

	upserted, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert game: %w", err)
	}
	return upserted, nil
}
