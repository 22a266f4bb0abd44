package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/inamate/vecedit/internal/typeid"
)

// Memory is a Store that lives in process memory.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string][]Snapshot
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string][]Snapshot)}
}

func (m *Memory) Save(ctx context.Context, sessionID string, doc json.RawMessage) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		SessionID: sessionID,
		Version:   len(m.snapshots[sessionID]) + 1,
		Document:  slices.Clone(doc),
		CreatedAt: time.Now().UTC(),
	}
	m.snapshots[sessionID] = append(m.snapshots[sessionID], snap)
	return &snap, nil
}

func (m *Memory) Latest(ctx context.Context, sessionID string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := m.snapshots[sessionID]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	snap := snaps[len(snaps)-1]
	snap.Document = slices.Clone(snap.Document)
	return &snap, nil
}

func (m *Memory) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, sessionID)
	return nil
}

func (m *Memory) Sessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.snapshots))
	for id := range m.snapshots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
