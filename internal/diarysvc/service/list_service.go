package service

import (
	"context"
	"fmt"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"
	"github.com/playloggd/diary-services/internal/diarysvc/store"

	log "github.com/sirupsen/logrus"
)

// ListService owns ordered membership for a user's named lists. Every
// membership or order mutation is serialized per list and leaves the
// list's positions a contiguous 0..M-1 before returning; there is no
// valid intermediate persisted state.
type ListService struct {
	lists store.ListStore
	items store.ListItemStore
	seq   *curation.Sequencer
}

func NewListService(lists store.ListStore, items store.ListItemStore) *ListService {
	return &ListService{
		lists: lists,
		items: items,
		seq:   curation.NewSequencer(),
	}
}

func listKey(listID int64) string {
	return fmt.Sprintf("list:%d", listID)
}

// CreateList validates and creates a named list.
func (s *ListService) CreateList(ctx context.Context, userID int64, name string, description *string, isPublic, isRanked bool) (*models.List, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}

	trimmed, err := curation.ValidateListName(name)
	if err != nil {
		return nil, err
	}

	created, err := s.lists.Insert(ctx, &models.List{
		UserID:      userID,
		Name:        trimmed,
		Description: description,
		IsPublic:    isPublic,
		IsRanked:    isRanked,
	})
	if err != nil {
		return nil, &curation.StoreError{Op: "CreateList", Err: err}
	}
	return created, nil
}

// ownedList loads the list and enforces that only the owner mutates it.
func (s *ListService) ownedList(ctx context.Context, userID, listID int64) (*models.List, error) {
	l, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, &curation.StoreError{Op: "GetList", Err: err}
	}
	if l == nil {
		return nil, curation.ErrNotFound
	}
	if l.UserID != userID {
		return nil, curation.ErrNotOwner
	}
	return l, nil
}

// AddItem appends the game at the end of the list. A game already in
// the list is rejected with ErrDuplicateItem and the count is
// unchanged.
func (s *ListService) AddItem(ctx context.Context, userID, listID, gameID int64, notes *string) (*models.ListItem, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}

	var created *models.ListItem
	err := s.seq.Do(listKey(listID), func() error {
		if _, err := s.ownedList(ctx, userID, listID); err != nil {
			return err
		}

		items, err := s.items.ListByList(ctx, listID)
		if err != nil {
			return &curation.StoreError{Op: "AddItem", Err: err}
		}

		created, err = s.items.Insert(ctx, &models.ListItem{
			ListID:   listID,
			GameID:   gameID,
			Position: len(items),
			Notes:    notes,
		})
		if err != nil {
			if err == curation.ErrDuplicateItem {
				return err
			}
			return &curation.StoreError{Op: "AddItem", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveItem deletes the item and compacts the positions after it.
func (s *ListService) RemoveItem(ctx context.Context, userID, listID, itemID int64) error {
	if userID == 0 {
		return curation.ErrNotAuthenticated
	}

	return s.seq.Do(listKey(listID), func() error {
		if _, err := s.ownedList(ctx, userID, listID); err != nil {
			return err
		}

		item, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return &curation.StoreError{Op: "RemoveItem", Err: err}
		}
		if item == nil || item.ListID != listID {
			return curation.ErrNotFound
		}

		if err := s.items.Delete(ctx, itemID); err != nil {
			return &curation.StoreError{Op: "RemoveItem", Err: err}
		}
		if err := s.items.ShiftDownAfter(ctx, listID, item.Position); err != nil {
			return &curation.StoreError{Op: "RemoveItem compaction", Err: err}
		}
		return nil
	})
}

// Reorder moves the item at fromIndex to toIndex and rewrites every
// position in the new order, 0-based and contiguous. The write is a
// full-list renumbering in one batch; serialization per list keeps two
// concurrent drags from interleaving into duplicate positions.
func (s *ListService) Reorder(ctx context.Context, userID, listID int64, fromIndex, toIndex int) ([]*models.ListItem, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}

	var reordered []*models.ListItem
	err := s.seq.Do(listKey(listID), func() error {
		if _, err := s.ownedList(ctx, userID, listID); err != nil {
			return err
		}

		items, err := s.items.ListByList(ctx, listID)
		if err != nil {
			return &curation.StoreError{Op: "Reorder", Err: err}
		}

		moved, err := curation.Reinsert(items, fromIndex, toIndex)
		if err != nil {
			return err
		}

		writes := make([]store.ItemPositionWrite, len(moved))
		for i, it := range moved {
			writes[i] = store.ItemPositionWrite{ItemID: it.ID, Position: i}
		}
		if err := s.items.SetPositions(ctx, writes); err != nil {
			return &curation.StoreError{Op: "Reorder", Err: err}
		}

		for i, it := range moved {
			it.Position = i
		}
		reordered = moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// SetRanked toggles the display-only ranked flag; storage positions
// are untouched.
func (s *ListService) SetRanked(ctx context.Context, userID, listID int64, isRanked bool) error {
	if userID == 0 {
		return curation.ErrNotAuthenticated
	}
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.lists.UpdateRanked(ctx, listID, isRanked); err != nil {
		return &curation.StoreError{Op: "SetRanked", Err: err}
	}
	return nil
}

// Lists returns the user's lists.
func (s *ListService) Lists(ctx context.Context, userID int64) ([]*models.List, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}
	lists, err := s.lists.ListByUser(ctx, userID)
	if err != nil {
		return nil, &curation.StoreError{Op: "Lists", Err: err}
	}
	return lists, nil
}

// GetList returns a list with its ordered items. Non-owners may read
// public lists only.
func (s *ListService) GetList(ctx context.Context, userID, listID int64) (*models.List, []*models.ListItem, error) {
	l, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, nil, &curation.StoreError{Op: "GetList", Err: err}
	}
	if l == nil {
		return nil, nil, curation.ErrNotFound
	}
	if !l.IsPublic && l.UserID != userID {
		return nil, nil, curation.ErrNotOwner
	}

	items, err := s.items.ListByList(ctx, listID)
	if err != nil {
		return nil, nil, &curation.StoreError{Op: "GetList", Err: err}
	}
	return l, items, nil
}

// ListsContaining reports, for every list the user owns, whether the
// game is a member. One batched membership query plus a local set
// check, never one round trip per list. Read-only and best effort: on
// store failure it degrades to an empty result with a warn log so the
// toggles render instead of blocking the page.
func (s *ListService) ListsContaining(ctx context.Context, userID, gameID int64) []models.ListMembership {
	if userID == 0 {
		return nil
	}

	lists, err := s.lists.ListByUser(ctx, userID)
	if err != nil {
		log.Warnf("lists-containing query degraded to empty for user %d: %v", userID, err)
		return nil
	}

	memberships, err := s.items.MembershipsByUser(ctx, userID)
	if err != nil {
		log.Warnf("membership query degraded to empty for user %d: %v", userID, err)
		return nil
	}

	member := make(map[int64]bool, len(memberships))
	for _, m := range memberships {
		if m.GameID == gameID {
			member[m.ListID] = true
		}
	}

	out := make([]models.ListMembership, 0, len(lists))
	for _, l := range lists {
		out = append(out, models.ListMembership{List: *l, Contains: member[l.ID]})
	}
	return out
}
