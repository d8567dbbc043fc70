// README: Trip session store: upsert-by-id persistence, no auto-publish.
package trip

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend persists trip sessions keyed by id. Saving does not notify anyone:
// trip changes go out as explicit SYNC_STATE broadcasts from the protocol
// layer, not as store change events.
type Backend interface {
	Get(ctx context.Context, id string) (Session, bool, error)
	Save(ctx context.Context, session Session) error
}

type Store struct {
	mu      sync.Mutex
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Current returns the active trip session, if any.
func (s *Store) Current(ctx context.Context) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Get(ctx, sessionKey)
}

// Save upserts the session by id, overwriting groups, progress, status and
// timestamps when a session already exists.
func (s *Store) Save(ctx context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, session)
}

// Update applies fn to the current session under the store lock and saves
// the result. Serializes concurrent progress events.
func (s *Store) Update(ctx context.Context, fn func(Session) (Session, error)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok, err := s.backend.Get(ctx, sessionKey)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	updated, err := fn(current)
	if err != nil {
		return Session{}, err
	}
	if err := s.backend.Save(ctx, updated); err != nil {
		return Session{}, err
	}
	return updated, nil
}

const sessionKey = "session"

type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]Session)}
}

func (b *MemoryBackend) Get(ctx context.Context, id string) (Session, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	return s, ok, nil
}

func (b *MemoryBackend) Save(ctx context.Context, session Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[session.ID] = session
	return nil
}

type PostgresBackend struct {
	db *pgxpool.Pool
}

func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trip_sessions (
			id      TEXT PRIMARY KEY,
			session JSONB NOT NULL
		)`)
	return err
}

func (b *PostgresBackend) Get(ctx context.Context, id string) (Session, bool, error) {
	row := b.db.QueryRow(ctx, `SELECT session FROM trip_sessions WHERE id = $1`, id)
	var raw []byte
	err := row.Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, false, err
	}
	return session, true, nil
}

func (b *PostgresBackend) Save(ctx context.Context, session Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = b.db.Exec(ctx, `
		INSERT INTO trip_sessions (id, session) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET session = EXCLUDED.session`,
		session.ID, raw)
	return err
}
