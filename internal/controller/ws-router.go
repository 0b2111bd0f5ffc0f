package controller

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/akflix/server/internal/metrics"
	"github.com/akflix/server/pkg/wsrouter"
)

func (c controller) getWSRouter(limit rate.Limit, burst int) *wsrouter.WSRouter {
	mux := wsrouter.New(
		wsrouter.WithRateLimit(limit, burst),
		wsrouter.WithErrorHandler(c.handleWSError),
		wsrouter.WithServeHook(func(_ context.Context, messageType string, known bool, err error) {
			metrics.IncWSMessage(messageType, known, outcome(err))
		}),
	)
	mux.Use(c.wsRequestIDMw(), c.loggerWSMw())

	mux.Handle("ALIVE", wsrouter.Bind(nil, c.handleAlive))

	// transport
	mux.Handle("TOGGLE_PLAY", wsrouter.Bind(nil, c.handleTogglePlay))
	mux.Handle("SEEK", wsrouter.Bind(c.validate, c.handleSeek))
	mux.Handle("SKIP", wsrouter.Bind(c.validate, c.handleSkip))
	mux.Handle("SET_VOLUME", wsrouter.Bind(c.validate, c.handleSetVolume))
	mux.Handle("TOGGLE_MUTE", wsrouter.Bind(nil, c.handleToggleMute))
	mux.Handle("TOGGLE_FULLSCREEN", wsrouter.Bind(nil, c.handleToggleFullscreen))
	mux.Handle("SET_PLAYBACK_RATE", wsrouter.Bind(c.validate, c.handleSetPlaybackRate))

	// controls
	mux.Handle("TOGGLE_SETTINGS", wsrouter.Bind(nil, c.handleToggleSettings))
	mux.Handle("CLOSE_SETTINGS", wsrouter.Bind(nil, c.handleCloseSettings))
	mux.Handle("POINTER_MOVE", wsrouter.Bind(nil, c.handlePointerMove))
	mux.Handle("POINTER_ENTER", wsrouter.Bind(nil, c.handlePointerEnter))
	mux.Handle("SCRUB_START", wsrouter.Bind(c.validate, c.handleScrubStart))
	mux.Handle("SCRUB_MOVE", wsrouter.Bind(c.validate, c.handleScrubMove))
	mux.Handle("SCRUB_END", wsrouter.Bind(c.validate, c.handleScrubEnd))
	mux.Handle("FOCUS", wsrouter.Bind(c.validate, c.handleFocus))
	mux.Handle("KEY_DOWN", wsrouter.Bind(c.validate, c.handleKeyDown))

	// source
	mux.Handle("CHANGE_SOURCE", wsrouter.Bind(c.validate, c.handleChangeSource))

	// media element
	mux.Handle("MEDIA_EVENT", wsrouter.Bind(c.validate, c.handleMediaEvent))
	mux.Handle("PLAY_RESULT", wsrouter.Bind(c.validate, c.handleRequestResult))
	mux.Handle("FULLSCREEN_RESULT", wsrouter.Bind(c.validate, c.handleRequestResult))
	mux.Handle("FULLSCREEN_CHANGE", wsrouter.Bind(c.validate, c.handleFullscreenChange))

	return mux
}

func outcome(err error) string {
	var verrs wsrouter.ValidationErrors
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, wsrouter.ErrUnknownMessageType):
		return "unknown"
	case errors.Is(err, wsrouter.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, wsrouter.ErrInvalidPayload), errors.As(err, &verrs):
		return "invalid"
	default:
		return "error"
	}
}
