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

// ListStore is the record-store contract for lists rows.
type ListStore interface {
	Insert(ctx context.Context, l *models.List) (*models.List, error)
	GetByID(ctx context.Context, id int64) (*models.List, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.List, error)
	UpdateRanked(ctx context.Context, id int64, ranked bool) error
	Delete(ctx context.Context, id int64) error
}

type listStore struct {
	db *pgxpool.Pool
}

func NewListStore(db *pgxpool.Pool) ListStore {
	return &listStore{db: db}
}

const listColumns = `id, user_id, name, description, is_public, is_ranked, created_at, updated_at`

func scanList(row pgx.Row) (*models.List, error) {
	l := &models.List{}
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&l.Description,
		&l.IsPublic,
		&l.IsRanked,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan list: %w", err)
	}
	return l, nil
}

func (s *listStore) Insert(ctx context.Context, l *models.List) (*models.List, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO lists (user_id, name, description, is_public, is_ranked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+listColumns+`
	`, l.UserID, l.Name, l.Description, l.IsPublic, l.IsRanked)

	created, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return created, nil
}

func (s *listStore) GetByID(ctx context.Context, id int64) (*models.List, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+listColumns+`
		FROM lists
		WHERE id = $1
	`, id)

	return scanList(row)
}

func (s *listStore) ListByUser(ctx context.Context, userID int64) ([]*models.List, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM lists
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		l := &models.List{}
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.Name,
			&l.Description,
			&l.IsPublic,
			&l.IsRanked,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list row: %w", err)
		}
		lists = append(lists, l)
	}

	return lists, rows.Err()
}

func (s *listStore) UpdateRanked(ctx context.Context, id int64, ranked bool) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE lists
		SET is_ranked = $2, updated_at = now()
		WHERE id = $1
	`, id, ranked)
	if err != nil {
		return fmt.Errorf("failed to update is_ranked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}

func (s *listStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}
