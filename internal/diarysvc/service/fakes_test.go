package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"
	"github.com/playloggd/diary-services/internal/diarysvc/store"
)

// fakeGameLogStore is an in-memory GameLogStore. failOps injects a
// store failure for a named operation; failLogIDs fails position
// writes for specific rows; countDelay widens the window between a
// capacity read and the write that follows it.
type fakeGameLogStore struct {
	mu         sync.Mutex
	nextID     int64
	logs       map[int64]*models.GameLog
	failOps    map[string]error
	failLogIDs map[int64]error
	countDelay time.Duration

	posWrites   int // SetFavoritePosition calls
	unfavWrites int // UpdateFavorite(favorite=false) calls
}

func newFakeGameLogStore() *fakeGameLogStore {
	return &fakeGameLogStore{
		logs:       make(map[int64]*models.GameLog),
		failOps:    make(map[string]error),
		failLogIDs: make(map[int64]error),
	}
}

func (f *fakeGameLogStore) fail(op string) error {
	if err, ok := f.failOps[op]; ok {
		return err
	}
	return nil
}

func (f *fakeGameLogStore) GetByUserAndGame(ctx context.Context, userID, gameID int64) (*models.GameLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetByUserAndGame"); err != nil {
		return nil, err
	}
	for _, gl := range f.logs {
		if gl.UserID == userID && gl.GameID == gameID {
			cp := *gl
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeGameLogStore) GetByID(ctx context.Context, id int64) (*models.GameLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gl, ok := f.logs[id]; ok {
		cp := *gl
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeGameLogStore) ListByUser(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GameLogWithGame
	for _, gl := range f.logs {
		if gl.UserID == userID {
			out = append(out, &models.GameLogWithGame{GameLog: *gl})
		}
	}
	return out, nil
}

func (f *fakeGameLogStore) ListFavorites(ctx context.Context, userID int64) ([]*models.GameLogWithGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ListFavorites"); err != nil {
		return nil, err
	}
	var out []*models.GameLogWithGame
	for _, gl := range f.logs {
		if gl.UserID == userID && gl.Favorite {
			out = append(out, &models.GameLogWithGame{GameLog: *gl})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].FavoritePosition, out[j].FavoritePosition
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
	return out, nil
}

func (f *fakeGameLogStore) CountFavorites(ctx context.Context, userID int64) (int, error) {
	if f.countDelay > 0 {
		time.Sleep(f.countDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CountFavorites"); err != nil {
		return 0, err
	}
	count := 0
	for _, gl := range f.logs {
		if gl.UserID == userID && gl.Favorite {
			count++
		}
	}
	return count, nil
}

func (f *fakeGameLogStore) Insert(ctx context.Context, gl *models.GameLog) (*models.GameLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Insert"); err != nil {
		return nil, err
	}
	f.nextID++
	cp := *gl
	cp.ID = f.nextID
	f.logs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeGameLogStore) UpdateStatusRating(ctx context.Context, id int64, status string, rating *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateStatusRating"); err != nil {
		return err
	}
	gl, ok := f.logs[id]
	if !ok {
		return curation.ErrNotFound
	}
	gl.Status = status
	gl.Rating = rating
	return nil
}

func (f *fakeGameLogStore) UpdateReview(ctx context.Context, id int64, review *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	gl, ok := f.logs[id]
	if !ok {
		return curation.ErrNotFound
	}
	gl.Review = review
	return nil
}

func (f *fakeGameLogStore) UpdateFavorite(ctx context.Context, id int64, favorite bool, position *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateFavorite"); err != nil {
		return err
	}
	if err, ok := f.failLogIDs[id]; ok {
		return err
	}
	gl, ok := f.logs[id]
	if !ok {
		return curation.ErrNotFound
	}
	if !favorite {
		f.unfavWrites++
	}
	gl.Favorite = favorite
	gl.FavoritePosition = position
	return nil
}

func (f *fakeGameLogStore) SetFavoritePosition(ctx context.Context, id int64, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failLogIDs[id]; ok {
		return err
	}
	gl, ok := f.logs[id]
	if !ok {
		return curation.ErrNotFound
	}
	f.posWrites++
	gl.Favorite = true
	p := position
	gl.FavoritePosition = &p
	return nil
}

func (f *fakeGameLogStore) ShiftFavoritesAbove(ctx context.Context, userID int64, vacated int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ShiftFavoritesAbove"); err != nil {
		return err
	}
	for _, gl := range f.logs {
		if gl.UserID == userID && gl.Favorite && gl.FavoritePosition != nil && *gl.FavoritePosition > vacated {
			p := *gl.FavoritePosition - 1
			gl.FavoritePosition = &p
		}
	}
	return nil
}

func (f *fakeGameLogStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Delete"); err != nil {
		return err
	}
	if _, ok := f.logs[id]; !ok {
		return curation.ErrNotFound
	}
	delete(f.logs, id)
	return nil
}

// favoritePositions returns the user's favorite positions sorted
// ascending, for contiguity assertions.
func (f *fakeGameLogStore) favoritePositions(userID int64) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, gl := range f.logs {
		if gl.UserID == userID && gl.Favorite && gl.FavoritePosition != nil {
			out = append(out, *gl.FavoritePosition)
		}
	}
	sort.Ints(out)
	return out
}

// fakeListStore is an in-memory ListStore.
type fakeListStore struct {
	mu      sync.Mutex
	nextID  int64
	lists   map[int64]*models.List
	failOps map[string]error
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{
		lists:   make(map[int64]*models.List),
		failOps: make(map[string]error),
	}
}

func (f *fakeListStore) Insert(ctx context.Context, l *models.List) (*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["Insert"]; err != nil {
		return nil, err
	}
	f.nextID++
	cp := *l
	cp.ID = f.nextID
	f.lists[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeListStore) GetByID(ctx context.Context, id int64) (*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.lists[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeListStore) ListByUser(ctx context.Context, userID int64) ([]*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["ListByUser"]; err != nil {
		return nil, err
	}
	var out []*models.List
	for _, l := range f.lists {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeListStore) UpdateRanked(ctx context.Context, id int64, ranked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[id]
	if !ok {
		return curation.ErrNotFound
	}
	l.IsRanked = ranked
	return nil
}

func (f *fakeListStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[id]; !ok {
		return curation.ErrNotFound
	}
	delete(f.lists, id)
	return nil
}

// fakeListItemStore is an in-memory ListItemStore enforcing the
// unique (list, game) constraint the way the real table does.
type fakeListItemStore struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]*models.ListItem
	lists   *fakeListStore
	failOps map[string]error
}

func newFakeListItemStore(lists *fakeListStore) *fakeListItemStore {
	return &fakeListItemStore{
		items:   make(map[int64]*models.ListItem),
		lists:   lists,
		failOps: make(map[string]error),
	}
}

func (f *fakeListItemStore) Insert(ctx context.Context, it *models.ListItem) (*models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["Insert"]; err != nil {
		return nil, err
	}
	for _, existing := range f.items {
		if existing.ListID == it.ListID && existing.GameID == it.GameID {
			return nil, curation.ErrDuplicateItem
		}
	}
	f.nextID++
	cp := *it
	cp.ID = f.nextID
	f.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeListItemStore) GetByID(ctx context.Context, id int64) (*models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeListItemStore) ListByList(ctx context.Context, listID int64) ([]*models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["ListByList"]; err != nil {
		return nil, err
	}
	var out []*models.ListItem
	for _, it := range f.items {
		if it.ListID == listID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeListItemStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return curation.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeListItemStore) ShiftDownAfter(ctx context.Context, listID int64, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ListID == listID && it.Position > position {
			it.Position--
		}
	}
	return nil
}

func (f *fakeListItemStore) SetPositions(ctx context.Context, writes []store.ItemPositionWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["SetPositions"]; err != nil {
		return err
	}
	for _, w := range writes {
		it, ok := f.items[w.ItemID]
		if !ok {
			return curation.ErrNotFound
		}
		it.Position = w.Position
	}
	return nil
}

func (f *fakeListItemStore) MembershipsByUser(ctx context.Context, userID int64) ([]store.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["MembershipsByUser"]; err != nil {
		return nil, err
	}
	var out []store.Membership
	for _, it := range f.items {
		l, ok := f.lists.lists[it.ListID]
		if ok && l.UserID == userID {
			out = append(out, store.Membership{ListID: it.ListID, GameID: it.GameID})
		}
	}
	return out, nil
}
