package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/akflix/server/internal/player"
	"github.com/akflix/server/internal/remote"
	"github.com/akflix/server/internal/repository/catalog"
	"github.com/akflix/server/internal/repository/session"
	"github.com/akflix/server/internal/service/playback"
	"github.com/akflix/server/pkg/validator"
	"github.com/akflix/server/pkg/wsrouter"
)

type EmptyInput struct{}

type errorOutput struct {
	MessageType string                      `json:"message_type,omitempty"`
	Error       string                      `json:"error"`
	Errors      []validator.ValidationError `json:"errors,omitempty"`
}

func (c controller) handleWSError(ctx context.Context, conn *wsrouter.Conn, messageType string, err error) {
	out := errorOutput{MessageType: messageType, Error: err.Error()}

	var verrs wsrouter.ValidationErrors
	if errors.As(err, &verrs) {
		out.Errors = verrs
	}

	if !errors.Is(err, wsrouter.ErrRateLimited) {
		c.logger.InfoContext(ctx, "websocket message failed", "message_type", messageType, "error", err)
	}
	if writeErr := conn.WriteJSON(&Output{Type: typeError, Payload: out}); writeErr != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", writeErr)
	}
}

// withPlayer runs fn against the connection's current player.
func (c controller) withPlayer(ctx context.Context, fn func(*player.Session)) error {
	sess, err := c.getSession(ctx)
	if err != nil {
		return err
	}

	fn(sess.Player)
	return nil
}

func (c controller) handleAlive(_ context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) handleTogglePlay(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).TogglePlay)
}

type SeekInput struct {
	Fraction *float64 `json:"fraction" validate:"required_without=Seconds,omitempty,gte=0,lte=1"`
	Seconds  *float64 `json:"seconds" validate:"required_without=Fraction"`
}

func (c controller) handleSeek(ctx context.Context, _ *wsrouter.Conn, input SeekInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		if input.Fraction != nil {
			p.SeekFraction(*input.Fraction)
			return
		}
		p.SeekTo(*input.Seconds)
	})
}

type SkipInput struct {
	Delta *float64 `json:"delta" validate:"required"`
}

func (c controller) handleSkip(ctx context.Context, _ *wsrouter.Conn, input SkipInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.Skip(*input.Delta)
	})
}

type SetVolumeInput struct {
	Volume *float64 `json:"volume" validate:"required,gte=0,lte=1"`
}

func (c controller) handleSetVolume(ctx context.Context, _ *wsrouter.Conn, input SetVolumeInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.SetVolume(*input.Volume)
	})
}

func (c controller) handleToggleMute(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).ToggleMute)
}

func (c controller) handleToggleFullscreen(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).ToggleFullscreen)
}

type SetPlaybackRateInput struct {
	Rate *float64 `json:"rate" validate:"required,gt=0"`
}

func (c controller) handleSetPlaybackRate(ctx context.Context, _ *wsrouter.Conn, input SetPlaybackRateInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.SetPlaybackRate(*input.Rate)
	})
}

func (c controller) handleToggleSettings(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).ToggleSettings)
}

func (c controller) handleCloseSettings(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).CloseSettings)
}

func (c controller) handlePointerMove(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).PointerMove)
}

func (c controller) handlePointerEnter(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return c.withPlayer(ctx, (*player.Session).PointerEnter)
}

type ScrubInput struct {
	Fraction *float64 `json:"fraction" validate:"required,gte=0,lte=1"`
}

func (c controller) handleScrubStart(ctx context.Context, _ *wsrouter.Conn, input ScrubInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.BeginScrub(*input.Fraction)
	})
}

func (c controller) handleScrubMove(ctx context.Context, _ *wsrouter.Conn, input ScrubInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.Scrub(*input.Fraction)
	})
}

func (c controller) handleScrubEnd(ctx context.Context, _ *wsrouter.Conn, input ScrubInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.EndScrub(*input.Fraction)
	})
}

type FocusInput struct {
	Focused bool `json:"focused"`
}

func (c controller) handleFocus(ctx context.Context, _ *wsrouter.Conn, input FocusInput) error {
	return c.withPlayer(ctx, func(p *player.Session) {
		p.SetFocus(input.Focused)
	})
}

type KeyDownInput struct {
	Key string `json:"key" validate:"required,max=32"`
}

type keyResultOutput struct {
	Key     string `json:"key"`
	Handled bool   `json:"handled"`
}

func (c controller) handleKeyDown(ctx context.Context, conn *wsrouter.Conn, input KeyDownInput) error {
	var handled bool
	if err := c.withPlayer(ctx, func(p *player.Session) {
		handled = p.HandleKey(input.Key)
	}); err != nil {
		return err
	}

	if err := conn.WriteJSON(&Output{
		Type:    typeKeyResult,
		Payload: keyResultOutput{Key: input.Key, Handled: handled},
	}); err != nil {
		return fmt.Errorf("failed to write key result: %w", err)
	}

	return nil
}

type ChangeSourceInput struct {
	MovieID string `json:"movie_id" validate:"required,max=128"`
}

type sourceChangedOutput struct {
	MediaID string        `json:"media_id"`
	Movie   catalog.Movie `json:"movie"`
	View    player.View   `json:"view"`
}

func (c controller) handleChangeSource(ctx context.Context, conn *wsrouter.Conn, input ChangeSourceInput) error {
	resp, err := c.playbackService.ChangeSource(ctx, &playback.ChangeSourceParams{
		SessionID: c.getSessionIDFromCtx(ctx),
		MovieID:   input.MovieID,
	})
	if err != nil {
		return fmt.Errorf("failed to change source: %w", err)
	}

	if err := conn.WriteJSON(&Output{
		Type: typeSourceChanged,
		Payload: sourceChangedOutput{
			MediaID: resp.MediaID,
			Movie:   resp.Movie,
			View:    player.Render(resp.Snapshot),
		},
	}); err != nil {
		return fmt.Errorf("failed to write source changed: %w", err)
	}

	return nil
}

type TimeRangeInput struct {
	Start float64 `json:"start"`
	End   float64 `json:"end" validate:"gtefield=Start"`
}

type MediaEventInput struct {
	MediaID     string           `json:"media_id" validate:"required"`
	Event       string           `json:"event" validate:"required,oneof=loadedmetadata timeupdate progress ended waiting playing error"`
	CurrentTime *float64         `json:"current_time"`
	Duration    *float64         `json:"duration"`
	Buffered    []TimeRangeInput `json:"buffered" validate:"omitempty,dive"`
	Error       string           `json:"error" validate:"max=256"`
}

// currentPeer returns the media binding of the session if mediaID still
// names it. Notifications from a replaced media element yield nil.
func (c controller) currentPeer(ctx context.Context, mediaID string) (*session.Session, error) {
	sess, err := c.getSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Peer.ID() != mediaID {
		c.logger.DebugContext(ctx, "stale media notification dropped", "media_id", mediaID, "current_media_id", sess.Peer.ID())
		return nil, nil
	}

	return sess, nil
}

func (c controller) handleMediaEvent(ctx context.Context, _ *wsrouter.Conn, input MediaEventInput) error {
	sess, err := c.currentPeer(ctx, input.MediaID)
	if err != nil || sess == nil {
		return err
	}

	var buffered []player.TimeRange
	if input.Buffered != nil {
		buffered = make([]player.TimeRange, 0, len(input.Buffered))
		for _, r := range input.Buffered {
			buffered = append(buffered, player.TimeRange{Start: r.Start, End: r.End})
		}
	}

	sess.Peer.Notify(remote.Notification{
		Kind:        player.MediaEventKind(input.Event),
		CurrentTime: input.CurrentTime,
		Duration:    input.Duration,
		Buffered:    buffered,
		Error:       input.Error,
	})

	return nil
}

type RequestResultInput struct {
	MediaID   string `json:"media_id" validate:"required"`
	RequestID string `json:"request_id" validate:"required"`
	Error     string `json:"error" validate:"max=256"`
}

func (c controller) handleRequestResult(ctx context.Context, _ *wsrouter.Conn, input RequestResultInput) error {
	sess, err := c.currentPeer(ctx, input.MediaID)
	if err != nil || sess == nil {
		return err
	}

	if err := sess.Peer.ResolveRequest(input.RequestID, input.Error); err != nil {
		if errors.Is(err, remote.ErrUnknownRequest) || errors.Is(err, remote.ErrPeerClosed) {
			c.logger.DebugContext(ctx, "request result dropped", "request_id", input.RequestID, "error", err)
			return nil
		}
		return fmt.Errorf("failed to resolve request: %w", err)
	}

	return nil
}

type FullscreenChangeInput struct {
	MediaID    string `json:"media_id" validate:"required"`
	Fullscreen bool   `json:"fullscreen"`
}

func (c controller) handleFullscreenChange(ctx context.Context, _ *wsrouter.Conn, input FullscreenChangeInput) error {
	sess, err := c.currentPeer(ctx, input.MediaID)
	if err != nil || sess == nil {
		return err
	}

	sess.Peer.FullscreenChanged(input.Fullscreen)
	return nil
}
