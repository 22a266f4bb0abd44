// Package store persists document snapshots per editing session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one saved version of a session's document.
type Snapshot struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Version   int             `json:"version"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store keeps versioned snapshots. Versions start at 1 and grow by one per
// Save.
type Store interface {
	Save(ctx context.Context, sessionID string, doc json.RawMessage) (*Snapshot, error)
	Latest(ctx context.Context, sessionID string) (*Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}
