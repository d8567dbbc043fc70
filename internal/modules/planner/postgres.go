// README: Planning backend backed by PostgreSQL (single JSONB row).
package planner

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBackend struct {
	db *pgxpool.Pool
}

func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the planning table if it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS route_sessions (
			id    TEXT PRIMARY KEY,
			state JSONB NOT NULL
		)`)
	return err
}

func (b *PostgresBackend) Load(ctx context.Context) (RouteState, bool, error) {
	row := b.db.QueryRow(ctx, `SELECT state FROM route_sessions WHERE id = $1`, SessionID)
	var raw []byte
	err := row.Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return RouteState{}, false, nil
	}
	if err != nil {
		return RouteState{}, false, err
	}
	var state RouteState
	if err := json.Unmarshal(raw, &state); err != nil {
		return RouteState{}, false, err
	}
	return state, true, nil
}

func (b *PostgresBackend) Save(ctx context.Context, state RouteState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = b.db.Exec(ctx, `
		INSERT INTO route_sessions (id, state) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state`,
		SessionID, raw)
	return err
}
