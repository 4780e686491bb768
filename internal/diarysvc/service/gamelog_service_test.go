package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
)

func TestToggleWantToPlayCreatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	state, err := svc.ToggleWantToPlay(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, curation.StateWantToPlay, state.Kind)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	require.NotNil(t, rec)
	assert.Equal(t, "want_to_play", rec.Status)
	assert.Nil(t, rec.Rating)

	// second toggle removes the log entirely
	state, err = svc.ToggleWantToPlay(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, curation.StateNone, state.Kind)

	rec, _ = logs.GetByUserAndGame(ctx, 1, 100)
	assert.Nil(t, rec)
}

func TestToggleWantToPlayFromPlayedClearsRatingKeepsFavorite(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	_, err := svc.ClickStar(ctx, 1, 100, 4)
	require.NoError(t, err)
	_, err = svc.SetFavorite(ctx, 1, 100, true)
	require.NoError(t, err)

	state, err := svc.ToggleWantToPlay(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, curation.StateWantToPlay, state.Kind)
	assert.False(t, state.Rated())
	assert.True(t, state.Favorite)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Rating)
	assert.True(t, rec.Favorite)
}

func TestClickStarCreatesPlayedLog(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	state, err := svc.ClickStar(ctx, 1, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, curation.StatePlayed, state.Kind)
	assert.Equal(t, 4.0, state.Rating)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	require.NotNil(t, rec)
	assert.Equal(t, "played", rec.Status)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 4.0, *rec.Rating)
}

func TestClickStarCycleEndsAtClear(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	_, err := svc.ClickStar(ctx, 1, 100, 4)
	require.NoError(t, err)
	state, err := svc.ClickStar(ctx, 1, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, 3.5, state.Rating)
	state, err = svc.ClickStar(ctx, 1, 100, 4)
	require.NoError(t, err)
	assert.False(t, state.Rated())
	assert.Equal(t, curation.StatePlayed, state.Kind)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Rating)
}

func TestClickStarInvalidStarCreatesNothing(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	_, err := svc.ClickStar(ctx, 1, 100, 6)
	var verr *curation.ValidationError
	require.ErrorAs(t, err, &verr)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	assert.Nil(t, rec)
}

func TestSetReviewCreatesPlayedLog(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	state, err := svc.SetReview(ctx, 1, 100, "a slow burn that pays off")
	require.NoError(t, err)
	assert.Equal(t, curation.StatePlayed, state.Kind)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	require.NotNil(t, rec)
	require.NotNil(t, rec.Review)
	assert.Equal(t, "a slow burn that pays off", *rec.Review)
}

func TestSetReviewEmptyOnUnloggedGameCreatesNothing(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	state, err := svc.SetReview(ctx, 1, 100, "")
	require.NoError(t, err)
	assert.Equal(t, curation.StateNone, state.Kind)

	rec, _ := logs.GetByUserAndGame(ctx, 1, 100)
	assert.Nil(t, rec)
}

func TestSetFavoriteCapacity(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	for g := int64(1); g <= 5; g++ {
		state, err := svc.SetFavorite(ctx, 1, g, true)
		require.NoError(t, err)
		assert.Equal(t, int(g), state.FavoritePosition)
	}

	// sixth favorite must fail and mutate nothing
	_, err := svc.SetFavorite(ctx, 1, 6, true)
	assert.ErrorIs(t, err, curation.ErrFavoriteSlotsFull)

	count, _ := logs.CountFavorites(ctx, 1)
	assert.Equal(t, 5, count)
	rec, _ := logs.GetByUserAndGame(ctx, 1, 6)
	assert.Nil(t, rec)
}

func TestConcurrentFavoritesRespectCapacity(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	for g := int64(1); g <= 4; g++ {
		_, err := svc.SetFavorite(ctx, 1, g, true)
		require.NoError(t, err)
	}

	// widen the count-to-write window so two overlapping gestures on
	// different games would both read 4 if the check were only
	// serialized per game
	logs.countDelay = 20 * time.Millisecond

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, g := range []int64{5, 6} {
		i, g := i, g
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.SetFavorite(ctx, 1, g, true)
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, curation.ErrFavoriteSlotsFull)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	count, err := logs.CountFavorites(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, logs.favoritePositions(1))
}

func TestUnfavoriteCompactsPositions(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	for g := int64(1); g <= 4; g++ {
		_, err := svc.SetFavorite(ctx, 1, g, true)
		require.NoError(t, err)
	}

	// vacate slot 2; the rest must close up to 1..3
	_, err := svc.SetFavorite(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, logs.favoritePositions(1))
}

func TestRemoveVacatesFavoriteSlot(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	for g := int64(1); g <= 3; g++ {
		_, err := svc.SetFavorite(ctx, 1, g, true)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Remove(ctx, 1, 1))
	assert.Equal(t, []int{1, 2}, logs.favoritePositions(1))

	rec, _ := logs.GetByUserAndGame(ctx, 1, 1)
	assert.Nil(t, rec)
}

func TestRemoveMissingLog(t *testing.T) {
	ctx := context.Background()
	svc := NewGameLogService(newFakeGameLogStore())
	assert.ErrorIs(t, svc.Remove(ctx, 1, 999), curation.ErrNotFound)
}

func TestStoreFailureRollsBackView(t *testing.T) {
	ctx := context.Background()
	logs := newFakeGameLogStore()
	svc := NewGameLogService(logs)

	_, err := svc.ClickStar(ctx, 1, 100, 3)
	require.NoError(t, err)

	logs.failOps["UpdateStatusRating"] = errors.New("connection reset")
	_, err = svc.ClickStar(ctx, 1, 100, 5)
	var serr *curation.StoreError
	require.ErrorAs(t, err, &serr)

	// the optimistic value must not survive the failed write
	state, err := svc.GetState(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3.0, state.Rating)
}

func TestOperationsRequireAuth(t *testing.T) {
	ctx := context.Background()
	svc := NewGameLogService(newFakeGameLogStore())

	_, err := svc.ToggleWantToPlay(ctx, 0, 100)
	assert.ErrorIs(t, err, curation.ErrNotAuthenticated)
	_, err = svc.ClickStar(ctx, 0, 100, 3)
	assert.ErrorIs(t, err, curation.ErrNotAuthenticated)
	_, err = svc.SetReview(ctx, 0, 100, "x")
	assert.ErrorIs(t, err, curation.ErrNotAuthenticated)
	_, err = svc.SetFavorite(ctx, 0, 100, true)
	assert.ErrorIs(t, err, curation.ErrNotAuthenticated)
	assert.ErrorIs(t, svc.Remove(ctx, 0, 100), curation.ErrNotAuthenticated)
}
