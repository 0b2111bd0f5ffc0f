package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akflix/server/internal/controller"
	"github.com/akflix/server/internal/repository/catalog"
	catalogRedis "github.com/akflix/server/internal/repository/catalog/redis"
	"github.com/akflix/server/internal/repository/session/inmemory"
	"github.com/akflix/server/internal/service/playback"
	"github.com/akflix/server/pkg/ctxlogger"
	"github.com/akflix/server/pkg/redisclient"
)

const shutdownTimeout = 30 * time.Second

type AppConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	LogLevel          string        `json:"log_level"`
	RedisPort         int           `json:"redis_port"`
	RedisHost         string        `json:"redis_host"`
	RedisPassword     string        `json:"-"`
	CatalogSeedPath   string        `json:"catalog_seed_path"`
	WSMessageRate     float64       `json:"ws_message_rate"`
	WSMessageBurst    int           `json:"ws_message_burst"`
	ConnectPerMinute  int           `json:"connect_per_minute"`
	ControlsHideDelay time.Duration `json:"controls_hide_delay"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.WSMessageRate <= 0 {
		return fmt.Errorf("ws message rate must be greater than 0")
	}
	if cfg.WSMessageBurst < 1 {
		return fmt.Errorf("ws message burst must be greater than 0")
	}
	if cfg.ConnectPerMinute < 0 {
		return fmt.Errorf("connect per minute must not be negative")
	}
	if cfg.ControlsHideDelay < 0 {
		return fmt.Errorf("controls hide delay must not be negative")
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type iCatalogSeeder interface {
	SeedMovies(ctx context.Context, movies []catalog.Movie) error
}

func seedCatalog(ctx context.Context, repo iCatalogSeeder, path string) (int, error) {
	movies, err := catalog.LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	if err := repo.SeedMovies(ctx, movies); err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	return len(movies), nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	catalogRepo := catalogRedis.NewRepo(rc)
	if cfg.CatalogSeedPath != "" {
		n, err := seedCatalog(ctx, catalogRepo, cfg.CatalogSeedPath)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "catalog seeded", "path", cfg.CatalogSeedPath, "movies", n)
	}

	sessionRepo := inmemory.NewRepo()
	playbackService := playback.NewService(catalogRepo, sessionRepo, logger, &playback.Config{
		HideDelay: cfg.ControlsHideDelay,
	})
	controller := controller.NewController(playbackService, logger, &controller.Config{
		WSMessageRate:    cfg.WSMessageRate,
		WSMessageBurst:   cfg.WSMessageBurst,
		ConnectPerMinute: cfg.ConnectPerMinute,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           controller.GetMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.InfoContext(gCtx, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
