package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"
	"github.com/playloggd/diary-services/internal/diarysvc/store"

	log "github.com/sirupsen/logrus"
)

// FavoritesService owns the top-5 editing flow: an explicit edit
// session holds a buffered copy of the ranking, mutated locally and
// reconciled to storage in one batch on commit. One session per user;
// re-entering the editor resumes the open session.
type FavoritesService struct {
	logs store.GameLogStore
	seq  *curation.Sequencer

	mu       sync.Mutex
	sessions map[int64]*editSession
}

type editSession struct {
	buffer *curation.EditBuffer

	// writes that failed on the previous commit attempt. While the
	// buffer stays unchanged only these are retried; any further edit
	// clears them and the next commit replays the full plan
	retryKeep  []curation.PositionWrite
	retryUnfav []int64
}

func NewFavoritesService(logs store.GameLogStore) *FavoritesService {
	return &FavoritesService{
		logs:     logs,
		seq:      curation.NewSequencer(),
		sessions: make(map[int64]*editSession),
	}
}

func favKey(userID int64) string {
	return fmt.Sprintf("fav:%d", userID)
}

// EnterEdit opens (or resumes) the user's edit session and returns the
// buffered order.
func (s *FavoritesService) EnterEdit(ctx context.Context, userID int64) ([]curation.FavoriteEntry, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}

	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		entries := sess.buffer.Entries()
		s.mu.Unlock()
		return entries, nil
	}
	s.mu.Unlock()

	favorites, err := s.logs.ListFavorites(ctx, userID)
	if err != nil {
		return nil, &curation.StoreError{Op: "EnterEdit", Err: err}
	}

	entries := make([]curation.FavoriteEntry, 0, len(favorites))
	for _, f := range favorites {
		entries = append(entries, curation.FavoriteEntry{LogID: f.ID, GameID: f.GameID})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		// lost the race to another EnterEdit, resume that one
		return sess.buffer.Entries(), nil
	}
	s.sessions[userID] = &editSession{buffer: curation.NewEditBuffer(entries)}
	return entries, nil
}

func (s *FavoritesService) session(userID int64) (*editSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, &curation.ValidationError{Field: "session", Reason: "no edit session open"}
	}
	return sess, nil
}

// MoveUp swaps the buffered entry at index with its predecessor.
func (s *FavoritesService) MoveUp(ctx context.Context, userID int64, index int) ([]curation.FavoriteEntry, error) {
	return s.mutate(userID, func(b *curation.EditBuffer) error { return b.MoveUp(index) })
}

// MoveDown swaps the buffered entry at index with its successor.
func (s *FavoritesService) MoveDown(ctx context.Context, userID int64, index int) ([]curation.FavoriteEntry, error) {
	return s.mutate(userID, func(b *curation.EditBuffer) error { return b.MoveDown(index) })
}

// RemoveFromBuffer drops a log from the buffer; storage is untouched
// until commit.
func (s *FavoritesService) RemoveFromBuffer(ctx context.Context, userID, logID int64) ([]curation.FavoriteEntry, error) {
	return s.mutate(userID, func(b *curation.EditBuffer) error { return b.Remove(logID) })
}

func (s *FavoritesService) mutate(userID int64, fn func(*curation.EditBuffer) error) ([]curation.FavoriteEntry, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(sess.buffer); err != nil {
		return nil, err
	}
	// an edit invalidates any retry subset from a failed commit; the
	// next commit must recompute the full plan or the edit is lost
	sess.retryKeep, sess.retryUnfav = nil, nil
	return sess.buffer.Entries(), nil
}

// ExitEdit closes the session, committing first when the buffer holds
// pending changes. A failed commit keeps the session open so the user
// can retry; navigation must not abandon a partially-committed batch.
func (s *FavoritesService) ExitEdit(ctx context.Context, userID int64) error {
	if userID == 0 {
		return curation.ErrNotAuthenticated
	}
	sess, err := s.session(userID)
	if err != nil {
		return err
	}

	if sess.buffer.Dirty() || len(sess.retryKeep) > 0 || len(sess.retryUnfav) > 0 {
		if err := s.Commit(ctx, userID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Commit reconciles the buffer to storage: every kept entry gets its
// 1-based position written, every removed entry is un-favorited. The
// writes touch disjoint rows and are issued concurrently; a partial
// failure is reported as an error and only the failed subset is
// retried on the next attempt.
func (s *FavoritesService) Commit(ctx context.Context, userID int64) error {
	if userID == 0 {
		return curation.ErrNotAuthenticated
	}
	sess, err := s.session(userID)
	if err != nil {
		return err
	}

	return s.seq.Do(favKey(userID), func() error {
		s.mu.Lock()
		keep, unfav := sess.buffer.CommitPlan()
		if len(sess.retryKeep) > 0 || len(sess.retryUnfav) > 0 {
			keep, unfav = sess.retryKeep, sess.retryUnfav
		}
		s.mu.Unlock()

		failedKeep, failedUnfav := s.writeBatch(ctx, keep, unfav)

		s.mu.Lock()
		sess.retryKeep, sess.retryUnfav = failedKeep, failedUnfav
		s.mu.Unlock()

		if len(failedKeep) > 0 || len(failedUnfav) > 0 {
			log.Warnf("favorites commit for user %d incomplete: %d position writes and %d unfavorites pending retry",
				userID, len(failedKeep), len(failedUnfav))
			return &curation.StoreError{
				Op:  "Commit",
				Err: fmt.Errorf("%d of %d writes failed", len(failedKeep)+len(failedUnfav), len(keep)+len(unfav)),
			}
		}

		s.mu.Lock()
		sess.buffer.Rebase()
		s.mu.Unlock()
		return nil
	})
}

// writeBatch issues the commit writes concurrently and returns the
// subsets that failed.
func (s *FavoritesService) writeBatch(ctx context.Context, keep []curation.PositionWrite, unfav []int64) ([]curation.PositionWrite, []int64) {
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		failedKeep []curation.PositionWrite
		failedUnf  []int64
	)

	for _, w := range keep {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.logs.SetFavoritePosition(ctx, w.LogID, w.Position); err != nil {
				log.Errorf("favorite position write failed for log %d: %v", w.LogID, err)
				mu.Lock()
				failedKeep = append(failedKeep, w)
				mu.Unlock()
			}
		}()
	}

	for _, id := range unfav {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.logs.UpdateFavorite(ctx, id, false, nil); err != nil {
				log.Errorf("unfavorite write failed for log %d: %v", id, err)
				mu.Lock()
				failedUnf = append(failedUnf, id)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return failedKeep, failedUnf
}

// Favorites returns the user's ranked favorites for display, slot
// order first, then most recently updated for entries still missing a
// position.
func (s *FavoritesService) Favorites(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}
	favorites, err := s.logs.ListFavorites(ctx, userID)
	if err != nil {
		return nil, &curation.StoreError{Op: "Favorites", Err: err}
	}
	return favorites, nil
}
