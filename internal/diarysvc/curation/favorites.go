package curation

// FavoriteEntry is one slot of the top-5 ranking inside an edit buffer.
type FavoriteEntry struct {
	LogID  int64 `json:"log_id"`
	GameID int64 `json:"game_id"`
}

// PositionWrite is one absolute favorite_position value to persist on
// commit. Writes are field-scoped and idempotent so a failed subset can
// be retried as-is.
type PositionWrite struct {
	LogID    int64
	Position int // 1-based
}

// EditBuffer is a local working copy of a user's ordered favorites,
// mutated freely while the editor is open and reconciled to storage in
// one batch on commit. Storage is never touched by the mutators.
type EditBuffer struct {
	entries  []FavoriteEntry
	original []FavoriteEntry
	dirty    bool
}

// NewEditBuffer copies the current confirmed ranking into a buffer.
func NewEditBuffer(current []FavoriteEntry) *EditBuffer {
	b := &EditBuffer{
		entries:  make([]FavoriteEntry, len(current)),
		original: make([]FavoriteEntry, len(current)),
	}
	copy(b.entries, current)
	copy(b.original, current)
	return b
}

// Entries returns the buffered order.
func (b *EditBuffer) Entries() []FavoriteEntry {
	out := make([]FavoriteEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Dirty reports whether the buffer differs from the ranking it was
// opened with.
func (b *EditBuffer) Dirty() bool { return b.dirty }

// MoveUp swaps the entry at index with its predecessor. No-op at the
// top of the buffer.
func (b *EditBuffer) MoveUp(index int) error {
	if index < 0 || index >= len(b.entries) {
		return &ValidationError{Field: "index", Reason: "outside buffer"}
	}
	if index == 0 {
		return nil
	}
	b.entries[index-1], b.entries[index] = b.entries[index], b.entries[index-1]
	b.dirty = true
	return nil
}

// MoveDown swaps the entry at index with its successor. No-op at the
// bottom of the buffer.
func (b *EditBuffer) MoveDown(index int) error {
	if index < 0 || index >= len(b.entries) {
		return &ValidationError{Field: "index", Reason: "outside buffer"}
	}
	if index == len(b.entries)-1 {
		return nil
	}
	b.entries[index], b.entries[index+1] = b.entries[index+1], b.entries[index]
	b.dirty = true
	return nil
}

// Remove drops the entry with the given log id from the buffer, marking
// it for un-favoriting on commit.
func (b *EditBuffer) Remove(logID int64) error {
	for i, e := range b.entries {
		if e.LogID == logID {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			b.dirty = true
			return nil
		}
	}
	return ErrNotFound
}

// Rebase marks the current buffer contents as the confirmed ranking,
// called after a commit has fully succeeded.
func (b *EditBuffer) Rebase() {
	b.original = make([]FavoriteEntry, len(b.entries))
	copy(b.original, b.entries)
	b.dirty = false
}

// CommitPlan derives the storage writes that reconcile the buffer:
// every kept entry gets its 1-based position written, every entry
// present at open but absent now gets un-favorited. The two sets touch
// disjoint rows.
func (b *EditBuffer) CommitPlan() (keep []PositionWrite, unfavorite []int64) {
	kept := make(map[int64]bool, len(b.entries))
	for i, e := range b.entries {
		kept[e.LogID] = true
		keep = append(keep, PositionWrite{LogID: e.LogID, Position: i + 1})
	}
	for _, e := range b.original {
		if !kept[e.LogID] {
			unfavorite = append(unfavorite, e.LogID)
		}
	}
	return keep, unfavorite
}
