// Package profile keeps the user_profiles table in step with the auth provider.
package profile

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/landrzz/LOPEffortTracker/internal/auth"
	"github.com/landrzz/LOPEffortTracker/internal/domain"
)

// ErrNoUser is returned when Upsert is called without a user identity.
var ErrNoUser = errors.New("no user provided")

// Store captures the persistence operations the sync needs.
type Store interface {
	Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	Get(ctx context.Context, uid string) (*domain.Profile, error)
}

// Sync upserts one profile row per signed-in user. Repeated calls with the
// same uid converge to the same row contents, last write wins.
type Sync struct {
	store Store
	log   zerolog.Logger
}

// NewSync constructs a Sync.
func NewSync(store Store, log zerolog.Logger) *Sync {
	return &Sync{store: store, log: log}
}

// Upsert mirrors the provider identity into user_profiles, keyed on uid. All
// fields except the creation timestamp are updated on conflict.
func (s *Sync) Upsert(ctx context.Context, identity *auth.Identity) (*domain.Profile, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrNoUser
	}

	displayName := identity.Metadata[domain.MetaName]
	if displayName == "" {
		displayName = identity.Metadata[domain.MetaFullName]
	}

	row := domain.Profile{
		UID:         identity.ID,
		Email:       identity.Email,
		DisplayName: displayName,
		LocationID:  identity.Metadata[domain.MetaLocationID],
		LOID:        identity.Metadata[domain.MetaLOID],
		Phone:       identity.Metadata[domain.MetaPhone],
	}
	return s.store.Upsert(ctx, row)
}

// SyncOnSignIn runs Upsert for a freshly signed-in identity. Failures are
// logged and swallowed: profile sync never blocks a sign-in.
func (s *Sync) SyncOnSignIn(ctx context.Context, identity *auth.Identity) {
	if _, err := s.Upsert(ctx, identity); err != nil {
		s.log.Error().Err(err).Str("uid", identityID(identity)).Msg("profile sync failed")
	}
}

// Lookup fetches the stored profile for a uid, or nil when none exists yet.
func (s *Sync) Lookup(ctx context.Context, uid string) (*domain.Profile, error) {
	return s.store.Get(ctx, uid)
}

func identityID(identity *auth.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.ID
}
