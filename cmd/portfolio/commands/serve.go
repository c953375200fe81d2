package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/terra-clan/portfolio/internal/api"
	"github.com/terra-clan/portfolio/internal/catalog"
	"github.com/terra-clan/portfolio/internal/cleanup"
	"github.com/terra-clan/portfolio/internal/config"
	"github.com/terra-clan/portfolio/internal/contact"
	"github.com/terra-clan/portfolio/internal/github"
	"github.com/terra-clan/portfolio/internal/health"
	"github.com/terra-clan/portfolio/internal/render"
	"github.com/terra-clan/portfolio/internal/showcase"
	"github.com/terra-clan/portfolio/internal/storage"
	"github.com/terra-clan/portfolio/internal/visitor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg *config.Config) error {
	slog.Info("starting portfolio",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"postgres", cfg.Database.UsesPostgres(),
		"redis", cfg.Redis.UsesRedis(),
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	projects, err := catalog.Load(cfg.Site.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	pipeline := showcase.NewPipeline(projects)
	slog.Info("catalog loaded", "projects", len(projects), "file", cfg.Site.CatalogFile)

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return err
	}

	registry := health.NewRegistry()

	// Durable storage
	var repo storage.Repository
	if cfg.Database.UsesPostgres() {
		pg, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{DSN: cfg.Database.DSN})
		if err != nil {
			return fmt.Errorf("failed to create database repository: %w", err)
		}
		slog.Info("database connected successfully")

		if cfg.Database.Migrate {
			slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
			if err := storage.RunMigrations(initCtx, pg.Pool(), cfg.Database.MigrationsDir); err != nil {
				pg.Close()
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		checker, err := health.NewPostgresChecker(cfg.Database.DSN)
		if err != nil {
			pg.Close()
			return err
		}
		defer checker.Close()
		registry.Register(checker)
		repo = pg
	} else {
		slog.Warn("DATABASE_DSN not set, contact messages are kept in memory")
		repo = storage.NewMemoryRepository()
		registry.Register(health.NewPingChecker("storage", repo))
	}
	defer repo.Close()

	// Visitor sessions and GitHub cache
	var (
		visitors visitor.Store
		ghCache  github.Cache
		pruner   cleanup.Pruner
	)
	if cfg.Redis.UsesRedis() {
		rs, err := visitor.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Session.TTL)
		if err != nil {
			return err
		}
		slog.Info("redis connected successfully", "address", cfg.Redis.Address)
		visitors = rs
		ghCache = github.NewRedisCache(rs.Client())
		registry.Register(health.NewRedisChecker(rs.Client()))
	} else {
		slog.Warn("REDIS_ADDRESS not set, visitor sessions are kept in memory")
		ms := visitor.NewMemoryStore(cfg.Session.TTL)
		visitors = ms
		pruner = ms
		ghCache = github.NewMemoryCache()
		registry.Register(health.NewPingChecker("visitors", ms))
	}
	defer visitors.Close()

	// GitHub showcase
	ghClient := github.NewClient(
		github.WithBaseURL(cfg.GitHub.APIURL),
		github.WithToken(cfg.GitHub.Token),
		github.WithPerPage(cfg.GitHub.PerPage),
	)
	ghService := github.NewService(ghClient, ghCache, cfg.GitHub.Username, cfg.GitHub.RefreshInterval)
	registry.RegisterOptional(health.NewGitHubChecker(ghClient))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background workers
	github.NewRefresher(ghService, cfg.GitHub.RefreshInterval).Start(ctx)
	if pruner != nil {
		cleanup.NewCleaner(pruner, cfg.Cleanup.Interval).Start(ctx)
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, api.Dependencies{
		Site:       cfg.Site,
		SessionTTL: cfg.Session.TTL,
		AdminToken: cfg.Admin.Token,
		Pipeline:   pipeline,
		Renderer:   renderer,
		Visitors:   visitors,
		Repository: repo,
		GitHub:     ghService,
		Contact:    contact.NewService(repo, visitors),
		Health:     registry,
	})
	// No WriteTimeout: it would also cut the hijacked analytics websocket.
	httpServer := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("portfolio stopped")
	return nil
}
