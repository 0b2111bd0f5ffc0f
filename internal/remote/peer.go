package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/akflix/server/internal/player"
)

var (
	ErrUnknownRequest = errors.New("unknown request id")
	ErrPeerClosed     = errors.New("peer closed")
)

const (
	CommandLoad              = "load"
	CommandPlay              = "play"
	CommandPause             = "pause"
	CommandSeek              = "seek"
	CommandSetVolume         = "set_volume"
	CommandSetPlaybackRate   = "set_playback_rate"
	CommandRequestFullscreen = "request_fullscreen"
	CommandExitFullscreen    = "exit_fullscreen"
)

// Command is an instruction for the browser-side media element.
type Command struct {
	MediaID   string   `json:"media_id"`
	Command   string   `json:"command"`
	RequestID string   `json:"request_id,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
}

// Notification mirrors a native media event reported by the browser,
// together with the element properties read when it fired.
type Notification struct {
	Kind        player.MediaEventKind
	CurrentTime *float64
	Duration    *float64
	Buffered    []player.TimeRange
	Error       string
}

// Peer is a media primitive and fullscreen capability living in a remote
// browser. Commands go out through send; notifications come back through
// Notify, ResolveRequest and FullscreenChanged.
type Peer struct {
	id     string
	send   func(Command) error
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	current  float64
	duration float64
	buffered []player.TimeRange

	nextSub    int
	mediaSubs  map[int]func(player.MediaEvent)
	changeSubs map[int]func(bool)
	pending    map[string]func(error)
}

func New(send func(Command) error, logger *slog.Logger) *Peer {
	id := uuid.NewString()
	return &Peer{
		id:         id,
		send:       send,
		logger:     logger.With("media_id", id),
		duration:   math.NaN(),
		mediaSubs:  make(map[int]func(player.MediaEvent)),
		changeSubs: make(map[int]func(bool)),
		pending:    make(map[string]func(error)),
	}
}

// ID identifies this media element instance. The browser tags every
// notification with it so that events from a replaced element are dropped.
func (p *Peer) ID() string {
	return p.id
}

func (p *Peer) command(cmd Command) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPeerClosed
	}

	cmd.MediaID = p.id
	if err := p.send(cmd); err != nil {
		p.logger.Warn("failed to send media command", "command", cmd.Command, "error", err)
		return fmt.Errorf("failed to send %s: %w", cmd.Command, err)
	}
	return nil
}

func (p *Peer) request(cmd string, done func(error)) {
	id := uuid.NewString()

	p.mu.Lock()
	p.pending[id] = done
	p.mu.Unlock()

	if err := p.command(Command{Command: cmd, RequestID: id}); err != nil {
		// done must not run inside the caller.
		go func() {
			if resolveErr := p.resolve(id, err); resolveErr != nil {
				p.logger.Debug("request dropped", "request_id", id, "error", resolveErr)
			}
		}()
	}
}

func value(v float64) *float64 {
	return &v
}

func (p *Peer) Load(sourceURL string) {
	_ = p.command(Command{Command: CommandLoad, SourceURL: sourceURL})
}

func (p *Peer) Play(done func(error)) {
	p.request(CommandPlay, done)
}

func (p *Peer) Pause() {
	_ = p.command(Command{Command: CommandPause})
}

func (p *Peer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Peer) SetCurrentTime(seconds float64) {
	p.mu.Lock()
	p.current = seconds
	p.mu.Unlock()
	_ = p.command(Command{Command: CommandSeek, Value: value(seconds)})
}

func (p *Peer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Peer) SetVolume(volume float64) {
	_ = p.command(Command{Command: CommandSetVolume, Value: value(volume)})
}

func (p *Peer) SetPlaybackRate(rate float64) {
	_ = p.command(Command{Command: CommandSetPlaybackRate, Value: value(rate)})
}

func (p *Peer) Buffered() []player.TimeRange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]player.TimeRange, len(p.buffered))
	copy(out, p.buffered)
	return out
}

func (p *Peer) Subscribe(handler func(player.MediaEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.mediaSubs[id] = handler
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.mediaSubs, id)
	}
}

func (p *Peer) RequestFullscreen(done func(error)) {
	p.request(CommandRequestFullscreen, done)
}

func (p *Peer) ExitFullscreen(done func(error)) {
	p.request(CommandExitFullscreen, done)
}

func (p *Peer) SubscribeChange(handler func(bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.changeSubs[id] = handler
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.changeSubs, id)
	}
}

// Notify applies a notification to the local mirror and delivers it to
// subscribers.
func (p *Peer) Notify(n Notification) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if n.CurrentTime != nil {
		p.current = *n.CurrentTime
	}
	if n.Duration != nil {
		p.duration = *n.Duration
	}
	if n.Buffered != nil {
		p.buffered = n.Buffered
	}
	handlers := make([]func(player.MediaEvent), 0, len(p.mediaSubs))
	for _, h := range p.mediaSubs {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	ev := player.MediaEvent{Kind: n.Kind}
	if n.Error != "" {
		ev.Err = errors.New(n.Error)
	}
	for _, h := range handlers {
		h(ev)
	}
}

// FullscreenChanged delivers the browser's fullscreen-change notification.
func (p *Peer) FullscreenChanged(fullscreen bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	handlers := make([]func(bool), 0, len(p.changeSubs))
	for _, h := range p.changeSubs {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(fullscreen)
	}
}

// ResolveRequest completes a play or fullscreen request. An empty errMsg
// means success.
func (p *Peer) ResolveRequest(requestID, errMsg string) error {
	var err error
	if errMsg != "" {
		err = errors.New(errMsg)
	}
	return p.resolve(requestID, err)
}

func (p *Peer) resolve(requestID string, err error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPeerClosed
	}
	done, ok := p.pending[requestID]
	delete(p.pending, requestID)
	p.mu.Unlock()

	if !ok {
		return ErrUnknownRequest
	}
	done(err)
	return nil
}

// Close drops subscribers and pending requests. Later notifications are
// ignored.
func (p *Peer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	clear(p.mediaSubs)
	clear(p.changeSubs)
	clear(p.pending)
}
