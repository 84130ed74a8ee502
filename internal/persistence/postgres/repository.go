// Package postgres provides pgx-backed persistence for the portal.
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landrzz/LOPEffortTracker/internal/domain"
	"github.com/landrzz/LOPEffortTracker/internal/observability"
	"github.com/landrzz/LOPEffortTracker/internal/outbox"
)

// Repository provides Postgres-backed persistence for activities and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists the activity and records its outbox event inside a single
// transaction.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (activity_id, activity_type, occurred_at, notes, user_id, lo_id, activity_count, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, insertActivity,
		activity.ID,
		activity.Type,
		activity.Timestamp,
		activity.Notes,
		activity.UserID,
		activity.LOID,
		activity.Count,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(outbox.ActivityCreated{
		ActivityID: activity.ID,
		Type:       string(activity.Type),
		Timestamp:  activity.Timestamp,
		UserID:     activity.UserID,
		LOID:       activity.LOID,
		Count:      activity.Count,
		OccurredAt: activity.CreatedAt,
	})
	if err != nil {
		return err
	}

	const insertOutbox = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = tx.Exec(ctx, insertOutbox,
		"activity",
		activity.ID,
		outbox.EventActivityCreated,
		outbox.TopicActivityEvents,
		activity.UserID,
		payload,
	)
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.UpdatedAt)
	return nil
}

const activityColumns = `activity_id, activity_type, occurred_at, notes, user_id, lo_id, activity_count, created_at, updated_at`

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.Type, &a.Timestamp, &a.Notes, &a.UserID, &a.LOID, &a.Count, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListByUser returns a user's activities newest first with cursor pagination.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (occurred_at, activity_id) < ($3, $4)`
		args = append(args, cursor.Timestamp, cursor.ID)
	}

	query += ` ORDER BY occurred_at DESC, activity_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0, limit)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{Timestamp: last.Timestamp, ID: last.ID}
	}
	return results, nextCursor, nil
}

// EffortTotal sums effort units for one user since the given instant.
// Countable activities weigh their count, everything else weighs 1.
func (r *Repository) EffortTotal(ctx context.Context, userID string, since time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(COALESCE(activity_count, 1)), 0)::int
        FROM activities WHERE user_id=$1 AND occurred_at >= $2`

	var total int
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// EffortTotalsByUser sums effort units per user since the given instant,
// busiest first, with display names joined in from user_profiles.
func (r *Repository) EffortTotalsByUser(ctx context.Context, since time.Time) ([]domain.TeamMemberStats, error) {
	const query = `SELECT a.user_id, COALESCE(p.display_name, ''), SUM(COALESCE(a.activity_count, 1))::int AS total
        FROM activities a
        LEFT JOIN user_profiles p ON p.uid = a.user_id
        WHERE a.occurred_at >= $1
        GROUP BY a.user_id, p.display_name
        ORDER BY total DESC, a.user_id`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.TeamMemberStats
	for rows.Next() {
		var s domain.TeamMemberStats
		if err := rows.Scan(&s.UserID, &s.DisplayName, &s.Total); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CountsByType sums effort units per activity type for one user since the
// given instant.
func (r *Repository) CountsByType(ctx context.Context, userID string, since time.Time) ([]domain.TypeCount, error) {
	const query = `SELECT activity_type, SUM(COALESCE(activity_count, 1))::int
        FROM activities WHERE user_id=$1 AND occurred_at >= $2
        GROUP BY activity_type
        ORDER BY activity_type`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.TypeCount
	for rows.Next() {
		var tc domain.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}
