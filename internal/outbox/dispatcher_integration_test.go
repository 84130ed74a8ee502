//go:build integration

package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/landrzz/LOPEffortTracker/internal/domain"
	"github.com/landrzz/LOPEffortTracker/internal/outbox"
	persistence "github.com/landrzz/LOPEffortTracker/internal/persistence/postgres"
)

type stubWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (s *stubWriter) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *stubWriter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func setupDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("loportal"),
		postgrescontainer.WithUsername("loportal"),
		postgrescontainer.WithPassword("loportal"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, persistence.Migrate(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func createActivity(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	repo := persistence.NewRepository(pool)
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, domain.Activity{
		ID:        uuid.NewString(),
		Type:      domain.TypeCall,
		Timestamp: now,
		UserID:    "uid-1",
		LOID:      "lo-1",
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestDispatcherPublishesAndMarks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := setupDatabase(t, ctx)
	createActivity(t, ctx, pool)

	writer := &stubWriter{}
	dispatcher := outbox.NewDispatcher(pool, writer, 100*time.Millisecond, 10, zerolog.Nop())
	go dispatcher.Start(ctx)

	require.Eventually(t, func() bool { return writer.count() == 1 }, 10*time.Second, 100*time.Millisecond)

	require.Eventually(t, func() bool {
		var unpublished int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&unpublished); err != nil {
			return false
		}
		return unpublished == 0
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	dispatcher.Wait()
}

func TestDispatcherRetriesAfterDeliveryFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := setupDatabase(t, ctx)
	createActivity(t, ctx, pool)

	writer := &stubWriter{err: errors.New("broker unavailable")}
	dispatcher := outbox.NewDispatcher(pool, writer, 100*time.Millisecond, 10, zerolog.Nop())
	go dispatcher.Start(ctx)

	// Failed rows stay unpublished until delivery succeeds.
	time.Sleep(500 * time.Millisecond)
	var unpublished int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&unpublished))
	require.Equal(t, 1, unpublished)

	writer.mu.Lock()
	writer.err = nil
	writer.mu.Unlock()

	require.Eventually(t, func() bool { return writer.count() >= 1 }, 10*time.Second, 100*time.Millisecond)

	cancel()
	dispatcher.Wait()
}
