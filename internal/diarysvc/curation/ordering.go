package curation

import "strings"

// Reinsert removes the element at from and reinserts it at to,
// returning the new order. Both indexes address the list before and
// after the move respectively, matching a drag gesture.
func Reinsert[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) {
		return nil, &ValidationError{Field: "from", Reason: "outside list"}
	}
	if to < 0 || to >= len(items) {
		return nil, &ValidationError{Field: "to", Reason: "outside list"}
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}

// ValidateListName trims and checks a list name. Empty after trimming
// is rejected.
func ValidateListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return name, nil
}

// Contiguous reports whether positions are exactly 0..len-1 in order.
// Stores rely on this to assert the at-rest invariant after a mutation.
func Contiguous(positions []int) bool {
	for i, p := range positions {
		if p != i {
			return false
		}
	}
	return true
}
