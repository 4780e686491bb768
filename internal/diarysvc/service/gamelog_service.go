package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"
	"github.com/playloggd/diary-services/internal/diarysvc/store"
)

// GameLogService is the single source of truth for one user's
// relationship to one game. Every mutation is serialized per
// (user, game) key, applied optimistically to the local view, then
// persisted; a store failure rolls the view back before the error is
// returned.
type GameLogService struct {
	logs store.GameLogStore
	seq  *curation.Sequencer

	mu   sync.Mutex
	view map[string]*curation.Overlay[curation.LogState]
}

func NewGameLogService(logs store.GameLogStore) *GameLogService {
	return &GameLogService{
		logs: logs,
		seq:  curation.NewSequencer(),
		view: make(map[string]*curation.Overlay[curation.LogState]),
	}
}

func logKey(userID, gameID int64) string {
	return fmt.Sprintf("log:%d:%d", userID, gameID)
}

// stateOf lifts a store record into the tagged variant.
func stateOf(rec *models.GameLog) curation.LogState {
	if rec == nil {
		return curation.LogState{}
	}
	s := curation.LogState{Favorite: rec.Favorite}
	if rec.Status == models.StatusWantToPlay {
		s.Kind = curation.StateWantToPlay
	} else {
		s.Kind = curation.StatePlayed
	}
	if rec.Rating != nil {
		s.Rating = *rec.Rating
	}
	if rec.Review != nil {
		s.Review = *rec.Review
	}
	if rec.FavoritePosition != nil {
		s.FavoritePosition = *rec.FavoritePosition
	}
	return s
}

func statusOf(s curation.LogState) string {
	if s.Kind == curation.StateWantToPlay {
		return models.StatusWantToPlay
	}
	return models.StatusPlayed
}

func ratingPtr(s curation.LogState) *float64 {
	if s.Rating == 0 {
		return nil
	}
	r := s.Rating
	return &r
}

func reviewPtr(s curation.LogState) *string {
	if s.Review == "" {
		return nil
	}
	t := s.Review
	return &t
}

func positionPtr(s curation.LogState) *int {
	if s.FavoritePosition == 0 {
		return nil
	}
	p := s.FavoritePosition
	return &p
}

func recordOf(userID, gameID int64, s curation.LogState) *models.GameLog {
	return &models.GameLog{
		UserID:           userID,
		GameID:           gameID,
		Status:           statusOf(s),
		Rating:           ratingPtr(s),
		Review:           reviewPtr(s),
		Favorite:         s.Favorite,
		FavoritePosition: positionPtr(s),
	}
}

func (s *GameLogService) overlay(key string, confirmed curation.LogState) *curation.Overlay[curation.LogState] {
	s.mu.Lock()
	defer s.mu.Unlock()
	ov, ok := s.view[key]
	if !ok {
		ov = curation.NewOverlay(confirmed)
		s.view[key] = ov
	}
	return ov
}

func (s *GameLogService) dropOverlay(key string) {
	s.mu.Lock()
	delete(s.view, key)
	s.mu.Unlock()
}

// ToggleWantToPlay flips the want-to-play state of a game: creates the
// log when absent, deletes it when already want-to-play, converts a
// played log back (clearing its rating, never its favorite slot).
func (s *GameLogService) ToggleWantToPlay(ctx context.Context, userID, gameID int64) (curation.LogState, error) {
	if userID == 0 {
		return curation.LogState{}, curation.ErrNotAuthenticated
	}

	var out curation.LogState
	key := logKey(userID, gameID)
	err := s.seq.Do(key, func() error {
		rec, err := s.logs.GetByUserAndGame(ctx, userID, gameID)
		if err != nil {
			return &curation.StoreError{Op: "ToggleWantToPlay", Err: err}
		}

		cur := stateOf(rec)
		next, deleted := curation.ToggleWantToPlay(cur)

		if deleted {
			return s.deleteRecord(ctx, key, rec)
		}

		ov := s.overlay(key, cur)
		ov.Apply(next)

		if rec == nil {
			_, err = s.logs.Insert(ctx, recordOf(userID, gameID, next))
		} else {
			err = s.logs.UpdateStatusRating(ctx, rec.ID, statusOf(next), ratingPtr(next))
		}
		if err != nil {
			ov.Rollback()
			return &curation.StoreError{Op: "ToggleWantToPlay", Err: err}
		}

		ov.Confirm()
		out = next
		return nil
	})
	return out, err
}

// ClickStar applies one click of the star cycle. A log is created only
// when the resulting rating is non-null; a clear on a missing record
// creates nothing.
func (s *GameLogService) ClickStar(ctx context.Context, userID, gameID int64, star int) (curation.LogState, error) {
	if userID == 0 {
		return curation.LogState{}, curation.ErrNotAuthenticated
	}

	var out curation.LogState
	key := logKey(userID, gameID)
	err := s.seq.Do(key, func() error {
		rec, err := s.logs.GetByUserAndGame(ctx, userID, gameID)
		if err != nil {
			return &curation.StoreError{Op: "ClickStar", Err: err}
		}

		cur := stateOf(rec)
		next, err := curation.ClickStar(cur, star)
		if err != nil {
			return err
		}

		if rec == nil && !next.Rated() {
			out = next
			return nil
		}

		ov := s.overlay(key, cur)
		ov.Apply(next)

		if rec == nil {
			_, err = s.logs.Insert(ctx, recordOf(userID, gameID, next))
		} else {
			err = s.logs.UpdateStatusRating(ctx, rec.ID, statusOf(next), ratingPtr(next))
		}
		if err != nil {
			ov.Rollback()
			return &curation.StoreError{Op: "ClickStar", Err: err}
		}

		ov.Confirm()
		out = next
		return nil
	})
	return out, err
}

// SetReview writes or clears the review text, creating a played log
// when the first review lands on an unlogged game.
func (s *GameLogService) SetReview(ctx context.Context, userID, gameID int64, text string) (curation.LogState, error) {
	if userID == 0 {
		return curation.LogState{}, curation.ErrNotAuthenticated
	}

	var out curation.LogState
	key := logKey(userID, gameID)
	err := s.seq.Do(key, func() error {
		rec, err := s.logs.GetByUserAndGame(ctx, userID, gameID)
		if err != nil {
			return &curation.StoreError{Op: "SetReview", Err: err}
		}

		cur := stateOf(rec)
		next := curation.SetReview(cur, text)

		if rec == nil && next.Kind == curation.StateNone {
			out = next
			return nil
		}

		ov := s.overlay(key, cur)
		ov.Apply(next)

		if rec == nil {
			_, err = s.logs.Insert(ctx, recordOf(userID, gameID, next))
		} else {
			err = s.logs.UpdateReview(ctx, rec.ID, reviewPtr(next))
		}
		if err != nil {
			ov.Rollback()
			return &curation.StoreError{Op: "SetReview", Err: err}
		}

		ov.Confirm()
		out = next
		return nil
	})
	return out, err
}

// SetFavorite turns favorite membership on or off. Capacity is checked
// before any state changes; the sixth favorite fails with
// ErrFavoriteSlotsFull and mutates nothing. Turning a favorite off
// compacts the remaining slots.
func (s *GameLogService) SetFavorite(ctx context.Context, userID, gameID int64, on bool) (curation.LogState, error) {
	if userID == 0 {
		return curation.LogState{}, curation.ErrNotAuthenticated
	}

	var out curation.LogState
	key := logKey(userID, gameID)
	err := s.seq.Do(key, func() error {
		// the slots span all of the user's games, so count-then-write
		// also holds the per-user favorites key; two gestures on
		// different games must not both pass the capacity check
		return s.seq.Do(favKey(userID), func() error {
			rec, err := s.logs.GetByUserAndGame(ctx, userID, gameID)
			if err != nil {
				return &curation.StoreError{Op: "SetFavorite", Err: err}
			}

			cur := stateOf(rec)

			// capacity pre-check against the confirmed favorite count;
			// the current log's own slot doesn't count against it
			count, err := s.logs.CountFavorites(ctx, userID)
			if err != nil {
				return &curation.StoreError{Op: "SetFavorite", Err: err}
			}
			if cur.Favorite {
				count--
			}

			next, err := curation.SetFavorite(cur, on, count)
			if err != nil {
				return err
			}
			if next == cur {
				out = next
				return nil
			}

			ov := s.overlay(key, cur)
			ov.Apply(next)

			if rec == nil {
				_, err = s.logs.Insert(ctx, recordOf(userID, gameID, next))
			} else {
				err = s.logs.UpdateFavorite(ctx, rec.ID, next.Favorite, positionPtr(next))
			}
			if err != nil {
				ov.Rollback()
				return &curation.StoreError{Op: "SetFavorite", Err: err}
			}
			ov.Confirm()

			// vacating a slot leaves a gap; close it
			if !on && cur.FavoritePosition > 0 {
				if err := s.logs.ShiftFavoritesAbove(ctx, userID, cur.FavoritePosition); err != nil {
					return &curation.StoreError{Op: "SetFavorite compaction", Err: err}
				}
			}

			out = next
			return nil
		})
	})
	return out, err
}

// Remove deletes the log outright, vacating and compacting any
// favorite slot it held.
func (s *GameLogService) Remove(ctx context.Context, userID, gameID int64) error {
	if userID == 0 {
		return curation.ErrNotAuthenticated
	}

	key := logKey(userID, gameID)
	return s.seq.Do(key, func() error {
		rec, err := s.logs.GetByUserAndGame(ctx, userID, gameID)
		if err != nil {
			return &curation.StoreError{Op: "Remove", Err: err}
		}
		if rec == nil {
			return curation.ErrNotFound
		}
		return s.deleteRecord(ctx, key, rec)
	})
}

// deleteRecord removes a log and compacts any favorite slot it held.
// Callers hold the sequencer slot for the record's key; the per-user
// favorites key is taken here so vacating and compacting cannot
// interleave with a capacity check on another game.
func (s *GameLogService) deleteRecord(ctx context.Context, key string, rec *models.GameLog) error {
	return s.seq.Do(favKey(rec.UserID), func() error {
		if err := s.logs.Delete(ctx, rec.ID); err != nil {
			return &curation.StoreError{Op: "Remove", Err: err}
		}
		s.dropOverlay(key)

		if rec.Favorite && rec.FavoritePosition != nil {
			if err := s.logs.ShiftFavoritesAbove(ctx, rec.UserID, *rec.FavoritePosition); err != nil {
				return &curation.StoreError{Op: "Remove compaction", Err: err}
			}
		}
		return nil
	})
}

// GetState reads through the optimistic view: an in-flight value wins
// over the stored one.
func (s *GameLogService) GetState(ctx context.Context, userID, gameID int64) (curation.LogState, error) {
	if userID == 0 {
		return curation.LogState{}, curation.ErrNotAuthenticated
	}

	key := logKey(userID, gameID)
	s.mu.Lock()
	ov, ok := s.view[key]
	s.mu.Unlock()
	if ok {
		return ov.Value(), nil
	}

	rec, err := s.logs.GetByUserAndGame(ctx, userID, gameID)
	if err != nil {
		return curation.LogState{}, &curation.StoreError{Op: "GetState", Err: err}
	}
	return stateOf(rec), nil
}

// Diary returns the user's full library, most recently touched first.
func (s *GameLogService) Diary(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}
	logs, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, &curation.StoreError{Op: "Diary", Err: err}
	}
	return logs, nil
}
