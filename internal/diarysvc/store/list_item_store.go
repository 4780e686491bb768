package store

import (
	"context"
	"fmt"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemPositionWrite is one absolute position value for a batched
// renumbering of a list.
type ItemPositionWrite struct {
	ItemID   int64
	Position int // 0-based
}

// Membership is one (list, game) pair from the single per-user
// membership query.
type Membership struct {
	ListID int64
	GameID int64
}

// ListItemStore is the record-store contract for list_items rows.
type ListItemStore interface {
	Insert(ctx context.Context, it *models.ListItem) (*models.ListItem, error)
	GetByID(ctx context.Context, id int64) (*models.ListItem, error)
	ListByList(ctx context.Context, listID int64) ([]*models.ListItem, error)
	Delete(ctx context.Context, id int64) error
	ShiftDownAfter(ctx context.Context, listID int64, position int) error
	SetPositions(ctx context.Context, writes []ItemPositionWrite) error
	MembershipsByUser(ctx context.Context, userID int64) ([]Membership, error)
}

type listItemStore struct {
	db *pgxpool.Pool
}

func NewListItemStore(db *pgxpool.Pool) ListItemStore {
	return &listItemStore{db: db}
}

const listItemColumns = `id, list_id, game_id, position, notes, created_at, updated_at`

func scanListItem(row pgx.Row) (*models.ListItem, error) {
	it := &models.ListItem{}
	err := row.Scan(
		&it.ID,
		&it.ListID,
		&it.GameID,
		&it.Position,
		&it.Notes,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan list item: %w", err)
	}
	return it, nil
}

// Insert appends the item. The unique_list_game constraint turns a
// second add of the same game into ErrDuplicateItem without changing
// the item count.
func (s *listItemStore) Insert(ctx context.Context, it *models.ListItem) (*models.ListItem, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO list_items (list_id, game_id, position, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+listItemColumns+`
	`, it.ListID, it.GameID, it.Position, it.Notes)

	created, err := scanListItem(row)
	if err != nil {
		code, constraint := pgErrCode(err)
		if code == uniqueViolation && constraint == "unique_list_game" {
			return nil, curation.ErrDuplicateItem
		}
		// referenced list or game row is gone
		if code == fkViolation {
			return nil, curation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to create list item: %w", err)
	}
	return created, nil
}

func (s *listItemStore) GetByID(ctx context.Context, id int64) (*models.ListItem, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+listItemColumns+`
		FROM list_items
		WHERE id = $1
	`, id)

	return scanListItem(row)
}

func (s *listItemStore) ListByList(ctx context.Context, listID int64) ([]*models.ListItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+listItemColumns+`
		FROM list_items
		WHERE list_id = $1
		ORDER BY position ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.ListItem
	for rows.Next() {
		it := &models.ListItem{}
		err := rows.Scan(
			&it.ID,
			&it.ListID,
			&it.GameID,
			&it.Position,
			&it.Notes,
			&it.CreatedAt,
			&it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list item row: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (s *listItemStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM list_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curation.ErrNotFound
	}
	return nil
}

// ShiftDownAfter decrements the position of every item past the
// removed one, restoring a contiguous 0..M-1.
func (s *listItemStore) ShiftDownAfter(ctx context.Context, listID int64, position int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE list_items
		SET position = position - 1, updated_at = now()
		WHERE list_id = $1 AND position > $2
	`, listID, position)
	if err != nil {
		return fmt.Errorf("failed to compact positions: %w", err)
	}
	return nil
}

// SetPositions rewrites positions for a full-list renumbering in a
// single batched round trip. The unique_list_position constraint is
// deferred, so the intermediate order inside the batch doesn't matter.
func (s *listItemStore) SetPositions(ctx context.Context, writes []ItemPositionWrite) error {
	if len(writes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, w := range writes {
		batch.Queue(`
			UPDATE list_items
			SET position = $2, updated_at = now()
			WHERE id = $1
		`, w.ItemID, w.Position)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range writes {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to write positions: %w", err)
		}
	}
	return nil
}

// MembershipsByUser fetches every (list, game) membership the user
// owns in one query, so per-list membership checks are a local set
// lookup instead of one round trip per list.
func (s *listItemStore) MembershipsByUser(ctx context.Context, userID int64) ([]Membership, error) {
	rows, err := s.db.Query(ctx, `
		SELECT li.list_id, li.game_id
		FROM list_items li
		JOIN lists l ON l.id = li.list_id
		WHERE l.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ListID, &m.GameID); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}
