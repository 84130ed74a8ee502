// Package session owns the sign-in lifecycle: one explicitly constructed
// manager per process, injected wherever the current user is needed.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/landrzz/LOPEffortTracker/internal/auth"
	"github.com/landrzz/LOPEffortTracker/internal/domain"
	"github.com/landrzz/LOPEffortTracker/internal/profile"
)

var (
	// ErrSessionNotFound is returned when no session row backs the token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRevoked is returned after sign-out.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrSessionExpired is returned past the session TTL.
	ErrSessionExpired = errors.New("session expired")
)

// Session is one signed-in lifetime for a user.
type Session struct {
	ID        string
	UID       string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Store captures session persistence.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

// Manager verifies federated credentials, issues session tokens and resolves
// tokens back to users.
type Manager struct {
	verifier auth.TokenVerifier
	store    Store
	profiles *profile.Sync
	cfg      auth.Config
	ttl      time.Duration
	log      zerolog.Logger
}

// NewManager constructs a Manager.
func NewManager(verifier auth.TokenVerifier, store Store, profiles *profile.Sync, cfg auth.Config, ttl time.Duration, log zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{verifier: verifier, store: store, profiles: profiles, cfg: cfg, ttl: ttl, log: log}
}

// SignInResult is what a successful sign-in hands back to the transport layer.
type SignInResult struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

// SignInWithIDToken exchanges a federated ID token for a portal session.
// Profile sync runs on every sign-in; its failures are logged, never surfaced.
func (m *Manager) SignInWithIDToken(ctx context.Context, rawToken string) (*SignInResult, error) {
	identity, err := m.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UID:       identity.ID,
		Email:     identity.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.profiles.SyncOnSignIn(ctx, identity)

	token, err := auth.Sign(m.cfg, identity.ID, identity.Email, sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	user, err := m.resolveUser(ctx, identity.ID, identity.Email, identity.Metadata)
	if err != nil {
		return nil, err
	}

	return &SignInResult{Token: token, User: user, ExpiresAt: sess.ExpiresAt}, nil
}

// ValidateClaims is the auth.Validator hook: it rejects tokens whose backing
// session row is missing, revoked or expired.
func (m *Manager) ValidateClaims(ctx context.Context, claims *auth.Claims) error {
	sess, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	if sess.RevokedAt != nil {
		return ErrSessionRevoked
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// CurrentUser resolves validated claims to the signed-in user, folding in the
// profile row for display name and role.
func (m *Manager) CurrentUser(ctx context.Context, claims *auth.Claims) (domain.User, error) {
	return m.resolveUser(ctx, claims.Subject, claims.Email, nil)
}

// SignOut revokes the session behind the claims. Revoking an already revoked
// session is a no-op; callers observe the revocation on their next request.
func (m *Manager) SignOut(ctx context.Context, claims *auth.Claims) error {
	return m.store.Revoke(ctx, claims.SessionID, time.Now().UTC())
}

func (m *Manager) resolveUser(ctx context.Context, uid, email string, metadata map[string]string) (domain.User, error) {
	user := domain.User{
		ID:       uid,
		Email:    email,
		Role:     domain.RoleLoanOfficer,
		Metadata: metadata,
	}

	row, err := m.profiles.Lookup(ctx, uid)
	if err != nil {
		// Degrade to provider identity only; the profile row is advisory here.
		m.log.Error().Err(err).Str("uid", uid).Msg("profile lookup failed")
		return user, nil
	}
	if row != nil {
		user.DisplayName = row.DisplayName
		if row.Role.Valid() {
			user.Role = row.Role
		}
	}
	return user, nil
}
