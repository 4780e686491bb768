package curation

import (
	"errors"
	"fmt"
)

// Sentinel conditions detected locally, before any store write. None of
// these leave partial state behind.
var (
	ErrNotAuthenticated  = errors.New("no active user session")
	ErrFavoriteSlotsFull = errors.New("all 5 favorite slots are taken")
	ErrDuplicateItem     = errors.New("game is already in this list")
	ErrNotFound          = errors.New("record not found")
	ErrNotOwner          = errors.New("list is owned by another user")
)

// ValidationError reports invalid caller input, e.g. an empty list name
// or a star outside 1..5.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps any failure from the record store. The optimistic
// local state has already been rolled back by the time a StoreError is
// returned.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure in %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
