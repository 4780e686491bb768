package curation

// Overlay is the two-layer optimistic state cell: a confirmed value
// (last acknowledged by the store) plus an optional pending overlay
// (the in-flight optimistic value). Reads see the pending value while
// a write is in flight; a failed write rolls back to confirmed.
type Overlay[T any] struct {
	confirmed T
	pending   *T
}

// NewOverlay seeds the cell with a confirmed value.
func NewOverlay[T any](confirmed T) *Overlay[T] {
	return &Overlay[T]{confirmed: confirmed}
}

// Value returns the pending value if one is in flight, otherwise the
// confirmed value.
func (o *Overlay[T]) Value() T {
	if o.pending != nil {
		return *o.pending
	}
	return o.confirmed
}

// Confirmed returns the last store-acknowledged value.
func (o *Overlay[T]) Confirmed() T { return o.confirmed }

// Apply sets the optimistic overlay.
func (o *Overlay[T]) Apply(v T) {
	o.pending = &v
}

// Confirm promotes the pending value to confirmed once the store has
// acknowledged it.
func (o *Overlay[T]) Confirm() {
	if o.pending != nil {
		o.confirmed = *o.pending
		o.pending = nil
	}
}

// Rollback discards the pending value after a store failure, restoring
// the last confirmed state.
func (o *Overlay[T]) Rollback() {
	o.pending = nil
}
