package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/akflix/server/internal/repository/catalog"
	"github.com/akflix/server/internal/repository/session"
	"github.com/akflix/server/internal/service/playback"
	"github.com/akflix/server/pkg/validator"
	"github.com/akflix/server/pkg/wsrouter"
)

type iPlaybackService interface {
	OpenSession(context.Context, *playback.OpenSessionParams) (playback.OpenSessionResponse, error)
	ChangeSource(context.Context, *playback.ChangeSourceParams) (playback.ChangeSourceResponse, error)
	CloseSession(context.Context, string) error
	GetSession(string) (*session.Session, error)
	GetMovie(context.Context, string) (catalog.Movie, error)
}

type Config struct {
	// WSMessageRate is the sustained inbound message rate per connection.
	WSMessageRate  float64
	WSMessageBurst int
	// ConnectPerMinute limits websocket upgrades per client IP.
	ConnectPerMinute int
}

type controller struct {
	playbackService  iPlaybackService
	upgrader         websocket.Upgrader
	validate         *validator.Validator
	logger           *slog.Logger
	wsRouter         *wsrouter.WSRouter
	connectPerMinute int
}

func NewController(playbackService iPlaybackService, logger *slog.Logger, cfg *Config) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		playbackService:  playbackService,
		validate:         validator.NewValidator(),
		logger:           logger,
		connectPerMinute: cfg.ConnectPerMinute,
	}
	c.wsRouter = c.getWSRouter(rate.Limit(cfg.WSMessageRate), cfg.WSMessageBurst)

	return c
}
