// Package store provides the blocked-call storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/callguard/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("blocked call not found")

// InsertParams holds parameters for recording a blocked call.
type InsertParams struct {
	PhoneNumber string
	CallerName  string // empty is stored as NULL
	Timestamp   int64  // unix millis
	Reason      string
	Keyword     string
}

// ListParams holds parameters for listing blocked calls.
type ListParams struct {
	Limit int // <= 0 means all
	Since int64
}

// Store defines the blocked-call storage interface.
type Store interface {
	// Insert appends a blocked call and returns its assigned identifier.
	Insert(ctx context.Context, p InsertParams) (int64, error)

	// Get retrieves one blocked call by identifier.
	Get(ctx context.Context, id int64) (*model.BlockedCall, error)

	// List returns blocked calls, most recent first.
	List(ctx context.Context, p ListParams) ([]model.BlockedCall, error)

	// Count returns the number of stored blocked calls.
	Count(ctx context.Context) (int, error)

	// DeleteOlderThan removes rows with timestamp strictly less than cutoff.
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)

	// Purge removes every row.
	Purge(ctx context.Context) (int64, error)

	// Close closes the store.
	Close() error
}

// Unavailable returns a Store whose every operation fails with err. It stands
// in for a primary database that could not be opened, so writes fail over.
func Unavailable(err error) Store {
	return unavailable{err: err}
}

type unavailable struct{ err error }

func (u unavailable) Insert(context.Context, InsertParams) (int64, error) { return 0, u.err }
func (u unavailable) Get(context.Context, int64) (*model.BlockedCall, error) { return nil, u.err }
func (u unavailable) List(context.Context, ListParams) ([]model.BlockedCall, error) {
	return nil, u.err
}
func (u unavailable) Count(context.Context) (int, error) { return 0, u.err }
func (u unavailable) DeleteOlderThan(context.Context, int64) (int64, error) { return 0, u.err }
func (u unavailable) Purge(context.Context) (int64, error) { return 0, u.err }
func (u unavailable) Close() error { return nil }
