package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
)

// seedFavorites logs and favorites games 1..n for the user, returning
// log IDs in slot order.
func seedFavorites(t *testing.T, logs *fakeGameLogStore, userID int64, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	svc := NewGameLogService(logs)

	ids := make([]int64, 0, n)
	for g := int64(1); g <= int64(n); g++ {
		_, err := svc.SetFavorite(ctx, userID, g, true)
		require.NoError(t, err)
		rec, err := logs.GetByUserAndGame(ctx, userID, g)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestEnterEditReturnsSlotOrder(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	ids := seedFavorites(t, logs, 1, 3)
	svc := NewFavoritesService(logs)

	entries, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, ids[i], e.LogID)
	}
}

func TestMoveUpCommitRewritesPositions(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	ids := seedFavorites(t, logs, 1, 3) // A, B, C in slots 1, 2, 3
	svc := NewFavoritesService(logs)

	_, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)

	// move C above B: order becomes A, C, B
	entries, err := svc.MoveUp(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, ids[2], entries[1].LogID)

	require.NoError(t, svc.ExitEdit(ctx, 1))

	favorites, err := logs.ListFavorites(ctx, 1)
	require.NoError(t, err)
	require.Len(t, favorites, 3)
	assert.Equal(t, ids[0], favorites[0].ID)
	assert.Equal(t, ids[2], favorites[1].ID)
	assert.Equal(t, ids[1], favorites[2].ID)
	assert.Equal(t, []int{1, 2, 3}, logs.favoritePositions(1))
}

func TestMoveAtBoundaryIsNoOp(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	seedFavorites(t, logs, 1, 2)
	svc := NewFavoritesService(logs)

	before, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)

	after, err := svc.MoveUp(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	after, err = svc.MoveDown(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// an unchanged buffer exits without issuing a single write
	require.NoError(t, svc.ExitEdit(ctx, 1))
	assert.Zero(t, logs.posWrites)
}

func TestRemoveFromBufferUnfavoritesOnCommit(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	ids := seedFavorites(t, logs, 1, 3)
	svc := NewFavoritesService(logs)

	_, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)

	entries, err := svc.RemoveFromBuffer(ctx, 1, ids[1])
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// storage untouched until commit
	count, _ := logs.CountFavorites(ctx, 1)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.ExitEdit(ctx, 1))

	count, _ = logs.CountFavorites(ctx, 1)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{1, 2}, logs.favoritePositions(1))

	rec, _ := logs.GetByID(ctx, ids[1])
	require.NotNil(t, rec)
	assert.False(t, rec.Favorite)
	assert.Nil(t, rec.FavoritePosition)
}

func TestMutateWithoutSessionFails(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoritesService(newFakeGameLogStore())

	_, err := svc.MoveUp(ctx, 1, 1)
	var verr *curation.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPartialCommitRetriesOnlyFailedWrites(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	ids := seedFavorites(t, logs, 1, 3)
	svc := NewFavoritesService(logs)

	_, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)
	_, err = svc.MoveUp(ctx, 1, 2)
	require.NoError(t, err)

	logs.failLogIDs[ids[1]] = errors.New("write timeout")
	err = svc.Commit(ctx, 1)
	var serr *curation.StoreError
	require.ErrorAs(t, err, &serr)

	// the failed commit keeps the session open
	require.Error(t, svc.ExitEdit(ctx, 1))

	// heal the store; the retry must reissue only what failed
	delete(logs.failLogIDs, ids[1])
	writesBefore := logs.posWrites
	require.NoError(t, svc.ExitEdit(ctx, 1))
	assert.Equal(t, 1, logs.posWrites-writesBefore)

	assert.Equal(t, []int{1, 2, 3}, logs.favoritePositions(1))
}

func TestEditsAfterFailedCommitReachStorage(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	ids := seedFavorites(t, logs, 1, 3) // A, B, C
	svc := NewFavoritesService(logs)

	_, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)
	_, err = svc.MoveUp(ctx, 1, 2) // A, C, B
	require.NoError(t, err)

	logs.failLogIDs[ids[1]] = errors.New("write timeout")
	require.Error(t, svc.Commit(ctx, 1))

	// edit again while the retry is pending
	_, err = svc.MoveUp(ctx, 1, 1) // C, A, B
	require.NoError(t, err)

	// the healed commit must carry the later edit, not just replay
	// the failed subset
	delete(logs.failLogIDs, ids[1])
	require.NoError(t, svc.ExitEdit(ctx, 1))

	favorites, err := logs.ListFavorites(ctx, 1)
	require.NoError(t, err)
	require.Len(t, favorites, 3)
	assert.Equal(t, ids[2], favorites[0].ID)
	assert.Equal(t, ids[0], favorites[1].ID)
	assert.Equal(t, ids[1], favorites[2].ID)
	assert.Equal(t, []int{1, 2, 3}, logs.favoritePositions(1))
}

func TestEnterEditResumesOpenSession(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	ids := seedFavorites(t, logs, 1, 3)
	svc := NewFavoritesService(logs)

	_, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)
	_, err = svc.MoveUp(ctx, 1, 2)
	require.NoError(t, err)

	// a second enter sees the buffered order, not the stored one
	entries, err := svc.EnterEdit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ids[2], entries[1].LogID)
}

func TestFavoritesEditRequiresAuth(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoritesService(newFakeGameLogStore())

	_, err := svc.EnterEdit(ctx, 0)
	assert.ErrorIs(t, err, curation.ErrNotAuthenticated)
	assert.ErrorIs(t, svc.ExitEdit(ctx, 0), curation.ErrNotAuthenticated)
	assert.ErrorIs(t, svc.Commit(ctx, 0), curation.ErrNotAuthenticated)
}
