package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/landrzz/LOPEffortTracker/internal/api"
	"github.com/landrzz/LOPEffortTracker/internal/auth"
	"github.com/landrzz/LOPEffortTracker/internal/config"
	"github.com/landrzz/LOPEffortTracker/internal/domain"
	"github.com/landrzz/LOPEffortTracker/internal/outbox"
	persistence "github.com/landrzz/LOPEffortTracker/internal/persistence/postgres"
	"github.com/landrzz/LOPEffortTracker/internal/platform/logger"
	"github.com/landrzz/LOPEffortTracker/internal/profile"
	"github.com/landrzz/LOPEffortTracker/internal/session"
	httptransport "github.com/landrzz/LOPEffortTracker/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("loportal", "info")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New("loportal", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := persistence.Migrate(ctx, cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	profiles := profile.NewSync(persistence.NewProfileStore(pool), log)

	authCfg := auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.JWTIssuer}
	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	sessions := session.NewManager(verifier, persistence.NewSessionStore(pool), profiles, authCfg, cfg.Auth.SessionTTL, log)

	producer := outbox.NewKafkaProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, log)
	go dispatcher.Start(ctx)

	service := domain.NewService(repo, cfg.DailyGoal)

	handler := api.NewHandler(service, sessions, profiles, log)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	authMiddleware := auth.NewMiddleware(authCfg, publicPaths, sessions.ValidateClaims)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(requestLogger(log)(router)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("address", cfg.HTTPAddress).Msg("portal service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	dispatcher.Wait()
}

// publicPaths lists routes reachable without a session.
func publicPaths(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics", "/v1/auth/google":
		return true
	}
	return false
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
