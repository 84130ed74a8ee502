package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landrzz/LOPEffortTracker/internal/session"
)

// SessionStore persists session rows.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Create inserts a new session row.
func (s *SessionStore) Create(ctx context.Context, sess session.Session) error {
	const query = `INSERT INTO sessions (session_id, uid, email, created_at, expires_at)
        VALUES ($1,$2,$3,$4,$5)`

	_, err := s.pool.Exec(ctx, query, sess.ID, sess.UID, sess.Email, sess.CreatedAt, sess.ExpiresAt)
	return err
}

// Get fetches a session by id, or nil when none exists.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	const query = `SELECT session_id, uid, COALESCE(email,''), created_at, expires_at, revoked_at
        FROM sessions WHERE session_id=$1`

	var sess session.Session
	err := s.pool.QueryRow(ctx, query, id).Scan(&sess.ID, &sess.UID, &sess.Email, &sess.CreatedAt, &sess.ExpiresAt, &sess.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

// Revoke marks the session revoked. Already revoked sessions keep their
// original revocation time.
func (s *SessionStore) Revoke(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET revoked_at = COALESCE(revoked_at, $2) WHERE session_id=$1`

	_, err := s.pool.Exec(ctx, query, id, at)
	return err
}
