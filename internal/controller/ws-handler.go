package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/akflix/server/internal/player"
	"github.com/akflix/server/internal/remote"
	"github.com/akflix/server/internal/repository/catalog"
	"github.com/akflix/server/internal/service/playback"
	"github.com/akflix/server/pkg/ctxlogger"
	"github.com/akflix/server/pkg/wsrouter"
)

const (
	typeSessionStarted = "SESSION_STARTED"
	typeViewUpdated    = "VIEW_UPDATED"
	typeCommand        = "COMMAND"
	typeKeyResult      = "KEY_RESULT"
	typeSourceChanged  = "SOURCE_CHANGED"
	typeError          = "ERROR"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type sessionStartedOutput struct {
	SessionID     string              `json:"session_id"`
	MediaID       string              `json:"media_id"`
	Movie         catalog.Movie       `json:"movie"`
	KeyBindings   []player.KeyBinding `json:"key_bindings"`
	PlaybackRates []float64           `json:"playback_rates"`
	View          player.View         `json:"view"`
}

type viewUpdatedOutput struct {
	View player.View `json:"view"`
}

func (c controller) connectPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID := chi.URLParam(r, "movie-id")
	ctx = ctxlogger.AppendCtx(ctx, slog.String("movie_id", movieID))

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(ctx, "failed to upgrade connection", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)

	resp, err := c.playbackService.OpenSession(ctx, &playback.OpenSessionParams{
		MovieID: movieID,
		Send: func(cmd remote.Command) error {
			return conn.WriteJSON(&Output{Type: typeCommand, Payload: cmd})
		},
		Observer: func(snap player.Snapshot) {
			if err := conn.WriteJSON(&Output{
				Type:    typeViewUpdated,
				Payload: viewUpdatedOutput{View: player.Render(snap)},
			}); err != nil {
				c.logger.DebugContext(ctx, "failed to write view update", "error", err)
			}
		},
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to open session", "error", err)
		if err := conn.WriteJSON(&Output{Type: typeError, Payload: errorOutput{Error: "failed to open session"}}); err != nil {
			c.logger.DebugContext(ctx, "failed to write error", "error", err)
		}
		conn.Close()
		return
	}

	defer func() {
		if err := c.playbackService.CloseSession(context.WithoutCancel(ctx), resp.SessionID); err != nil {
			c.logger.WarnContext(ctx, "failed to close session", "session_id", resp.SessionID, "error", err)
		}
	}()

	ctx = context.WithValue(ctx, sessionIDCtxKey, resp.SessionID)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", resp.SessionID))

	if err := conn.WriteJSON(&Output{
		Type: typeSessionStarted,
		Payload: sessionStartedOutput{
			SessionID:     resp.SessionID,
			MediaID:       resp.MediaID,
			Movie:         resp.Movie,
			KeyBindings:   player.KeyBindings(),
			PlaybackRates: player.PlaybackRates,
			View:          player.Render(resp.Snapshot),
		},
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to write session started", "error", err)
		conn.Close()
		return
	}

	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, context.Canceled) {
			c.logger.DebugContext(ctx, "player connection closed", "error", err)
			return
		}
		c.logger.InfoContext(ctx, "player connection failed", "error", err)
	}
}
