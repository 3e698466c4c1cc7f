// Package store persists game sessions.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load for unknown ids.
var ErrNotFound = errors.New("record not found")

// Record is the persisted form of a session. Board holds the board's text
// encoding.
type Record struct {
	ID            string    `datastore:"-"`
	Board         string    `datastore:"board,noindex"`
	Player        string    `datastore:"player,noindex"`
	ComputerFirst bool      `datastore:"computer_first,noindex"`
	LastX         int       `datastore:"last_x,noindex"`
	LastY         int       `datastore:"last_y,noindex"`
	Created       time.Time `datastore:"created"`
	Updated       time.Time `datastore:"updated"`
}

// Store saves and loads records by id.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id string) (Record, error)
}
