// Package session stores branchable agent session histories and exposes the
// active branch to the plan tracker.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session id does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEntryNotFound is returned when an entry id is not part of the session tree.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrSessionExists is returned when creating a session whose id is taken.
	ErrSessionExists = errors.New("session already exists")
)

// Session is the metadata of one session history.
type Session struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Leaf       string    `json:"leaf,omitempty"`       // entry id the active branch ends at
	ForkedFrom string    `json:"forkedFrom,omitempty"` // session id this one was forked from
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store persists sessions and their entries.
type Store interface {
	// Create persists a new session. It fails with ErrSessionExists if the id is taken.
	Create(ctx context.Context, s *Session) error
	// Load returns a session by id or ErrSessionNotFound.
	Load(ctx context.Context, id string) (*Session, error)
	// List returns all sessions ordered by creation time.
	List(ctx context.Context) ([]*Session, error)
	// Delete removes a session and its entries. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// SetLeaf moves the active branch of a session to the given entry id.
	SetLeaf(ctx context.Context, id, leaf string) error
	// Append adds an entry to a session in insertion order.
	Append(ctx context.Context, id string, e Entry) error
	// Entries returns every entry of a session in insertion order.
	Entries(ctx context.Context, id string) ([]Entry, error)
	// Close releases store resources.
	Close() error
}

// Store backends
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// OpenStore opens the store backend rooted at dir.
func OpenStore(backend, dir string) (Store, error) {
	switch backend {
	case BackendJSONL, "":
		return NewJSONLStore(dir), nil
	case BackendSQLite:
		return OpenSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendJSONL, BackendSQLite)
	}
}
