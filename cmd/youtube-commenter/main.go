package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/auth"
	"github.com/smnuman/youtube-commenter/internal/brain"
	"github.com/smnuman/youtube-commenter/internal/comments"
	"github.com/smnuman/youtube-commenter/internal/config"
	"github.com/smnuman/youtube-commenter/internal/platform"
	"github.com/smnuman/youtube-commenter/internal/reply"
	"github.com/smnuman/youtube-commenter/internal/secrets"
	"github.com/smnuman/youtube-commenter/internal/server"
	"github.com/smnuman/youtube-commenter/internal/store/postgres"
	redisstore "github.com/smnuman/youtube-commenter/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("YTC_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("YTC_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Credential vault for token encryption at rest.
	vault, err := secrets.NewVaultFromBase64(cfg.Session.VaultKey)
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	// Apply pending schema migrations before opening the pool.
	if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), vault) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Platform client for the YouTube Data API.
	platformClient := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout, cfg.Platform.MaxRetries, cfg.Platform.MaxPageSize)

	// Session gate over the Google OAuth provider.
	provider := auth.NewGoogleProvider(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.RedirectURL)
	gate := auth.NewGate(provider, store.Users(), store.Sessions(), store.Credentials(), cfg.Session.TTL, cfg.Session.RefreshSkew)

	// Comment sync service and reply orchestrator.
	syncer := comments.NewService(platformClient, store.Comments(), store.Interactions(), pubsub)

	generator := brain.NewOpenAIGenerator(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
	orchestrator := reply.NewOrchestrator(generator, platformClient, store.Comments(), store.Videos(), store.Interactions())

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, gate, platformClient, syncer, orchestrator)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
