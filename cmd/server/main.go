package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/api"
	"github.com/lalith-99/shoutout/internal/cache"
	"github.com/lalith-99/shoutout/internal/config"
	"github.com/lalith-99/shoutout/internal/db"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/observ"
	"github.com/lalith-99/shoutout/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defaultWindow, err := engine.ParseWindow(cfg.DefaultWindow)
	if err != nil {
		return fmt.Errorf("parse DEFAULT_WINDOW: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Cancelled on SIGINT/SIGTERM; startup retries and the server both stop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Connect to Postgres and apply the schema
	// ---------------------------------------------------------------
	database, err := db.New(ctx, cfg.DatabaseURL, db.Options{
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, logger.Named("db"))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// ---------------------------------------------------------------
	// 4. Build the engine over the Postgres stores
	// ---------------------------------------------------------------
	pool := database.Pool()
	repos := engine.Repositories{
		Users:     postgres.NewUserStore(pool),
		ShoutOuts: postgres.NewShoutOutStore(pool),
		Reactions: postgres.NewReactionStore(pool),
		Comments:  postgres.NewCommentStore(pool),
		Stats:     postgres.NewStatsStore(pool),
		Reports:   postgres.NewReportStore(pool),
	}

	var opts []engine.Option
	if cfg.LeaderboardCacheTTL > 0 {
		client, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		opts = append(opts, engine.WithLeaderboardCache(
			cache.NewSnapshots(client, cfg.LeaderboardCacheTTL, logger.Named("cache")),
		))
		logger.Info("leaderboard cache enabled", zap.Duration("ttl", cfg.LeaderboardCacheTTL))
	}

	svc := engine.NewService(repos, cfg.Milestones, logger.Named("engine"), opts...)

	// ---------------------------------------------------------------
	// 5. Serve HTTP until a shutdown signal arrives
	// ---------------------------------------------------------------
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		Service:       svc,
		JWTSecret:     cfg.JWTSecret,
		DefaultWindow: defaultWindow,
		Health:        database.Health,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting shoutout engine",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.Stringer("default_window", defaultWindow),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
