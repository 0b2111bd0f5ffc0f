package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/akflix/server/internal/repository/catalog"
	"github.com/akflix/server/internal/repository/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

type iCatalogRepo interface {
	GetMovie(ctx context.Context, movieID string) (catalog.Movie, error)
}

type iSessionRepo interface {
	Add(*session.Session) error
	Get(string) (*session.Session, error)
	Replace(*session.Session) (*session.Session, error)
	Remove(string) (*session.Session, error)
	Len() int
}

type Config struct {
	// HideDelay is the controls auto-hide delay; zero keeps the player default.
	HideDelay time.Duration
	Clock     clockwork.Clock
}

type service struct {
	catalogRepo iCatalogRepo
	sessionRepo iSessionRepo
	clock       clockwork.Clock
	hideDelay   time.Duration
	logger      *slog.Logger
	// mu serializes source changes and teardown.
	mu sync.Mutex
}

func NewService(catalogRepo iCatalogRepo, sessionRepo iSessionRepo, logger *slog.Logger, cfg *Config) *service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &service{
		catalogRepo: catalogRepo,
		sessionRepo: sessionRepo,
		clock:       clock,
		hideDelay:   cfg.HideDelay,
		logger:      logger,
	}
}
