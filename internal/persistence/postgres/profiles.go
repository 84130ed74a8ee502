package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landrzz/LOPEffortTracker/internal/domain"
)

// ProfileStore persists one user_profiles row per uid.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore constructs a ProfileStore.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Upsert inserts or updates the profile row keyed on uid. On conflict every
// field except role and the creation timestamp is replaced; the row is read
// back so callers see the stored contents.
func (s *ProfileStore) Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	const query = `INSERT INTO user_profiles (uid, email, display_name, location_id, lo_id, phone, updated_at)
        VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),now())
        ON CONFLICT (uid) DO UPDATE SET
            email = EXCLUDED.email,
            display_name = EXCLUDED.display_name,
            location_id = EXCLUDED.location_id,
            lo_id = EXCLUDED.lo_id,
            phone = EXCLUDED.phone,
            updated_at = now()
        RETURNING uid, email, COALESCE(display_name,''), COALESCE(location_id,''), COALESCE(lo_id,''), COALESCE(phone,''), role`

	row := s.pool.QueryRow(ctx, query, p.UID, p.Email, p.DisplayName, p.LocationID, p.LOID, p.Phone)

	var stored domain.Profile
	if err := row.Scan(&stored.UID, &stored.Email, &stored.DisplayName, &stored.LocationID, &stored.LOID, &stored.Phone, &stored.Role); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get fetches the profile row for a uid, or nil when none exists.
func (s *ProfileStore) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	const query = `SELECT uid, email, COALESCE(display_name,''), COALESCE(location_id,''), COALESCE(lo_id,''), COALESCE(phone,''), role
        FROM user_profiles WHERE uid=$1`

	var stored domain.Profile
	err := s.pool.QueryRow(ctx, query, uid).Scan(&stored.UID, &stored.Email, &stored.DisplayName, &stored.LocationID, &stored.LOID, &stored.Phone, &stored.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &stored, nil
}
