package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/vecedit/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (session_id, version)
)`

// NewPool connects to Postgres and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres is a Store backed by a snapshots table.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the snapshots table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate snapshots: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, sessionID string, doc json.RawMessage) (*Snapshot, error) {
	snap := Snapshot{ID: typeid.NewSnapshotID(), SessionID: sessionID, Document: doc}
	err := p.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, session_id, version, document)
		VALUES ($1, $2, COALESCE((SELECT MAX(version) FROM snapshots WHERE session_id = $2), 0) + 1, $3)
		RETURNING version, created_at`,
		snap.ID, sessionID, []byte(doc),
	).Scan(&snap.Version, &snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) Latest(ctx context.Context, sessionID string) (*Snapshot, error) {
	snap := Snapshot{SessionID: sessionID}
	var doc []byte
	err := p.pool.QueryRow(ctx, `
		SELECT id, version, document, created_at FROM snapshots
		WHERE session_id = $1 ORDER BY version DESC LIMIT 1`,
		sessionID,
	).Scan(&snap.ID, &snap.Version, &doc, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap.Document = doc
	return &snap, nil
}

func (p *Postgres) Delete(ctx context.Context, sessionID string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM snapshots WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

func (p *Postgres) Sessions(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT DISTINCT session_id FROM snapshots ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
