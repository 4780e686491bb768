package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameLogStore is the record-store contract for game_logs rows. All
// writes are field-scoped and absolute so retries are idempotent.
type GameLogStore interface {
	GetByUserAndGame(ctx context.Context, userID, gameID int64) (*models.GameLog, error)
	GetByID(ctx context.Context, id int64) (*models.GameLog, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error)
	ListFavorites(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error)
	CountFavorites(ctx context.Context, userID int64) (int, error)
	Insert(ctx context.Context, gl *models.GameLog) (*models.GameLog, error)
	UpdateStatusRating(ctx context.Context, id int64, status string, rating *float64) error
	UpdateReview(ctx context.Context, id int64, review *string) error
	UpdateFavorite(ctx context.Context, id int64, favorite bool, position *int) error
	SetFavoritePosition(ctx context.Context, id int64, position int) error
	ShiftFavoritesAbove(ctx context.Context, userID int64, vacated int) error
	Delete(ctx context.Context, id int64) error
}

type gameLogStore struct {
	db *pgxpool.Pool
}

func NewGameLogStore(db *pgxpool.Pool) GameLogStore {
	return &gameLogStore{db: db}
}

const gameLogColumns = `id, user_id, game_id, status, rating, review, favorite, favorite_position, created_at, updated_at`

func scanGameLog(row pgx.Row) (*models.GameLog, error) {
	gl := &models.GameLog{}
	err := row.Scan(
		&gl.ID,
		&gl.UserID,
		&gl.GameID,
		&gl.Status,
		&gl.Rating,
		&gl.Review,
		&gl.Favorite,
		&gl.FavoritePosition,
		&gl.CreatedAt,
		&gl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan game log: %w", err)
	}
	return gl, nil
}

func (s *gameLogStore) GetByUserAndGame(ctx context.Context, userID, gameID int64) (*models.GameLog, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+gameLogColumns+`
		FROM game_logs
		WHERE user_id = $1 AND game_id = $2
	`, userID, gameID)

	return scanGameLog(row)
}

func (s *gameLogStore) GetByID(ctx context.Context, id int64) (*models.GameLog, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+gameLogColumns+`
		FROM game_logs
		WHERE id = $1
	`, id)

	return scanGameLog(row)
}

func (s *gameLogStore) ListByUser(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error) {
	rows, err := s.db.Query(ctx, `
		SELECT gl.id, gl.user_id, gl.game_id, gl.status, gl.rating, gl.review,
		       gl.favorite, gl.favorite_position, gl.created_at, gl.updated_at,
		       g.id, g.external_id, g.title, g.cover_url, g.release_year, g.created_at, g.updated_at
		FROM game_logs gl
		JOIN games g ON g.id = gl.game_id
		WHERE gl.user_id = $1
		ORDER BY gl.updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game logs: %w", err)
	}
	defer rows.Close()

	return scanGameLogsWithGame(rows)
}

// ListFavorites returns favorited logs with assigned positions first in
// slot order; entries still missing a position fall back to most
// recently updated first. Only favorite_position is authoritative once
// set.
func (s *gameLogStore) ListFavorites(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error) {
	rows, err := s.db.Query(ctx, `
		SELECT gl.id, gl.user_id, gl.game_id, gl.status, gl.rating, gl.review,
		       gl.favorite, gl.favorite_position, gl.created_at, gl.updated_at,
		       g.id, g.external_id, g.title, g.cover_url, g.release_year, g.created_at, g.updated_at
		FROM game_logs gl
		JOIN games g ON g.id = gl.game_id
		WHERE gl.user_id = $1 AND gl.favorite
		ORDER BY gl.favorite_position ASC NULLS LAST, gl.updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	return scanGameLogsWithGame(rows)
}

func scanGameLogsWithGame(rows pgx.Rows) ([]*models.GameLogWithGame, error) {
	var logs []*models.GameLogWithGame
	for rows.Next() {
		gl := &models.GameLogWithGame{}
		err := rows.Scan(
			&gl.ID,
			&gl.UserID,
			&gl.GameID,
			&gl.Status,
			&gl.Rating,
			&gl.Review,
			&gl.Favorite,
			&gl.FavoritePosition,
			&gl.CreatedAt,
			&gl.UpdatedAt,
			&gl.Game.ID,
			&gl.Game.ExternalID,
			&gl.Game.Title,
			&gl.Game.CoverURL,
			&gl.Game.ReleaseYear,
			&gl.Game.CreatedAt,
			&gl.Game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game log row: %w", err)
		}
		logs = append(logs, gl)
	}
	return logs, rows.Err()
}

func (s *gameLogStore) CountFavorites(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM game_logs
		WHERE user_id = $1 AND favorite
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

func (s *gameLogStore) Insert(ctx context.Context, gl *models.GameLog) (*models.GameLog, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO game_logs (user_id, game_id, status, rating, review, favorite, favorite_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+gameLogColumns+`
	`, gl.UserID, gl.GameID, gl.Status, gl.Rating, gl.Review, gl.Favorite, gl.FavoritePosition)

	created := &models.GameLog{}
	err := row.Scan(
		&created.ID,
		&created.UserID,
		&created.GameID,
		&created.Status,
		&created.Rating,
		&created.Review,
		&created.Favorite,
		&created.FavoritePosition,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		if code, constraint := pgErrCode(err); code == uniqueViolation && constraint == "unique_user_game" {
			return nil, fmt.Errorf("game log already exists for user %d game %d", gl.UserID, gl.GameID)
		}
		return nil, fmt.Errorf("failed to create game log: %w", err)
	}

	return created, nil
}

func (s *gameLogStore) UpdateStatusRating(ctx context.Context, id int64, status string, rating *float64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE game_logs
		SET status = $2, rating = $3, updated_at = now()
		WHERE id = $1
	`, id, status, rating)
	if err != nil {
		return fmt.Errorf("failed to update status/rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}

func (s *gameLogStore) UpdateReview(ctx context.Context, id int64, review *string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE game_logs
		SET review = $2, updated_at = now()
		WHERE id = $1
	`, id, review)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}

func (s *gameLogStore) UpdateFavorite(ctx context.Context, id int64, favorite bool, position *int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE game_logs
		SET favorite = $2, favorite_position = $3, updated_at = now()
		WHERE id = $1
	`, id, favorite, position)
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}

func (s *gameLogStore) SetFavoritePosition(ctx context.Context, id int64, position int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE game_logs
		SET favorite = TRUE, favorite_position = $2, updated_at = now()
		WHERE id = $1
	`, id, position)
	if err != nil {
		return fmt.Errorf("failed to set favorite position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}

// ShiftFavoritesAbove closes the gap left by a vacated slot, keeping
// favorite positions a contiguous 1..N.
func (s *gameLogStore) ShiftFavoritesAbove(ctx context.Context, userID int64, vacated int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE game_logs
		SET favorite_position = favorite_position - 1, updated_at = now()
		WHERE user_id = $1 AND favorite AND favorite_position > $2
	`, userID, vacated)
	if err != nil {
		return fmt.Errorf("failed to compact favorite positions: %w", err)
	}
	return nil
}

func (s *gameLogStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM game_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}
