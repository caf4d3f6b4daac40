package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationSessions is the DDL for the session table. Safe to execute
// repeatedly; callers may run it at startup as an auto-migration step.
// Tokens are stored as SHA-256 digests so a database dump never yields a
// usable bearer token.
const MigrationSessions = `
CREATE TABLE IF NOT EXISTS session (
    user_id      UUID PRIMARY KEY,
    token_digest TEXT NOT NULL UNIQUE,
    profile_json JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session (expires_at);
`

// pgRow represents a single row returned by QueryRow.
type pgRow interface {
	Scan(dest ...any) error
}

// pgConn is the minimal database interface required by PGSessionStore. Both
// *pgxpool.Pool (via a thin adapter) and test mocks implement this.
type pgConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgRow
	Exec(ctx context.Context, sql string, args ...any) error
}

// PGSessionStore is a PostgreSQL-backed SessionStore. One row per user
// (user_id primary key), so Create is an upsert with last-write-wins
// semantics and a fresh login invalidates the previous token atomically.
type PGSessionStore struct {
	db pgConn
}

func NewPGSessionStore(db pgConn) *PGSessionStore {
	return &PGSessionStore{db: db}
}

func (s *PGSessionStore) Create(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal session profile: %w", err)
	}

	const query = `INSERT INTO session (user_id, token_digest, profile_json, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET token_digest = EXCLUDED.token_digest,
                                    profile_json = EXCLUDED.profile_json,
                                    created_at   = EXCLUDED.created_at,
                                    expires_at   = EXCLUDED.expires_at`

	if err := s.db.Exec(ctx, query, sess.User.ID, digestToken(sess.Token), data, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PGSessionStore) Read(ctx context.Context, token string) (*Session, error) {
	// Boundary matches the memory store: a session expiring exactly now is
	// still valid.
	const query = `SELECT profile_json, created_at, expires_at FROM session
WHERE token_digest = $1 AND expires_at >= now()`

	var (
		data      []byte
		createdAt time.Time
		expiresAt time.Time
	)
	if err := s.db.QueryRow(ctx, query, digestToken(token)).Scan(&data, &createdAt, &expiresAt); err != nil {
		if isNoRows(err) {
			return nil, ErrSessionAbsent
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal session profile: %w", err)
	}

	return &Session{Token: token, User: p, CreatedAt: createdAt, ExpiresAt: expiresAt}, nil
}

func (s *PGSessionStore) Clear(ctx context.Context, token string) error {
	if err := s.db.Exec(ctx, `DELETE FROM session WHERE token_digest = $1`, digestToken(token)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *PGSessionStore) ClearAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.Exec(ctx, `DELETE FROM session WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear sessions for user: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry. Intended to be run
// periodically by the server.
func (s *PGSessionStore) PurgeExpired(ctx context.Context) error {
	if err := s.db.Exec(ctx, `DELETE FROM session WHERE expires_at < now()`); err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}
	return nil
}

func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || strings.Contains(err.Error(), "no rows in result set")
}

// poolConn adapts *pgxpool.Pool to the pgConn interface.
type poolConn struct {
	pool *pgxpool.Pool
}

func (p poolConn) QueryRow(ctx context.Context, sql string, args ...any) pgRow {
	return p.pool.QueryRow(ctx, sql, args...)
}

func (p poolConn) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

// NewPGSessionStoreFromPool wraps a pgx pool in a PGSessionStore.
func NewPGSessionStoreFromPool(pool *pgxpool.Pool) *PGSessionStore {
	return &PGSessionStore{db: poolConn{pool: pool}}
}
