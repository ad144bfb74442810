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

	"go.uber.org/zap"

	"github.com/neexbeast/tourfront/internal/api"
	"github.com/neexbeast/tourfront/internal/cache"
	"github.com/neexbeast/tourfront/internal/config"
	"github.com/neexbeast/tourfront/internal/logger"
	"github.com/neexbeast/tourfront/internal/storage"
	"github.com/neexbeast/tourfront/internal/tour"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool, os.DirFS(cfg.MigrationsDir), log); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", zap.String("dir", cfg.MigrationsDir))

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	repo := storage.NewRepository(pool)
	listingCache := cache.NewCache(redisClient, cfg.CacheTTL)
	client := tour.NewClient(tour.Options{
		BaseURL:  cfg.TourAPIBaseURL,
		Tokens:   tour.StaticToken(cfg.TourAPIToken),
		PageSize: cfg.TourPageSize,
		MaxPages: cfg.TourMaxPages,
		Timeout:  cfg.TourAPITimeout,
		Logger:   log.Named("upstream"),
	})
	handlers := api.NewHandlers(repo, listingCache, client, cfg.SnapshotMaxAge, log)

	router := api.NewRouter(handlers, cfg.BearerToken, pool, cache.Pinger{Client: redisClient}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if len(cfg.WarmScopes) > 0 {
		go warm(ctx, handlers, cfg.WarmScopes, log)
	}

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", zap.Any("recover", r))
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// warm preloads the configured scopes so the first storefront requests hit the cache.
func warm(ctx context.Context, handlers *api.Handlers, ids []string, log *zap.Logger) {
	scopes := make([]tour.Scope, 0, len(ids))
	for _, id := range ids {
		scopes = append(scopes, tour.NewScope(id))
	}

	start := time.Now()
	if err := handlers.Warm(ctx, scopes); err != nil {
		log.Warn("warm-up finished with errors", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	log.Info("warm-up finished", zap.Int("scopes", len(scopes)), zap.Duration("took", time.Since(start)))
}
