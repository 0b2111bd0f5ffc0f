package player

import (
	"log/slog"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	ControlsHideDelay  = 3000 * time.Millisecond
	FlashDuration      = 500 * time.Millisecond
	FullscreenDebounce = 300 * time.Millisecond

	// DefaultRestoreVolume is used when unmuting would otherwise restore 0.
	DefaultRestoreVolume = 0.7
	SkipStep             = 10.0
	VolumeStep           = 0.05
)

// PlaybackRates lists the selectable playback rates in menu order.
var PlaybackRates = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

func validRate(r float64) bool {
	for _, v := range PlaybackRates {
		if v == r {
			return true
		}
	}
	return false
}

type Config struct {
	SourceURL  string
	PosterURL  string
	Media      Media
	Fullscreen Fullscreen
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// OnChange receives a snapshot after every observable state change.
	// It is called without the session lock held.
	OnChange func(Snapshot)
	// HideDelay overrides ControlsHideDelay when positive.
	HideDelay time.Duration
}

type timerSlot struct {
	timer clockwork.Timer
	gen   uint64
}

func (t *timerSlot) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Session is the playback controller for one mounted player. It owns
// exactly one Media and one Fullscreen for its whole life.
type Session struct {
	mu sync.Mutex

	media      Media
	fullscreen Fullscreen
	clock      clockwork.Clock
	logger     *slog.Logger
	onChange   func(Snapshot)
	hideDelay  time.Duration

	closed      bool
	version     uint64
	unsubscribe []func()

	sourceURL   string
	posterURL   string
	unavailable bool

	status       Status
	resumeStatus Status
	errKind      ErrorKind
	playIntent   bool
	playReq      uint64
	hasPlayed    bool

	position      float64
	duration      float64
	durationKnown bool
	buffered      float64

	volume        float64
	restoreVolume float64
	muted         bool
	rate          float64

	controlsVisible   bool
	isFullscreen      bool
	fullscreenPending bool
	showSettings      bool
	scrubbing         bool
	focused           bool
	toggleFlash       bool
	skipFlash         int

	hideTimer  timerSlot
	flashTimer timerSlot
	skipTimer  timerSlot
	fsTimer    timerSlot
}

// NewSession mounts a player on cfg.SourceURL. An empty or invalid source
// yields a permanently unavailable session that never touches the media.
func NewSession(cfg Config) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hideDelay := cfg.HideDelay
	if hideDelay <= 0 {
		hideDelay = ControlsHideDelay
	}

	s := &Session{
		media:           cfg.Media,
		fullscreen:      cfg.Fullscreen,
		clock:           clock,
		logger:          logger.With("source_url", cfg.SourceURL),
		onChange:        cfg.OnChange,
		hideDelay:       hideDelay,
		sourceURL:       cfg.SourceURL,
		posterURL:       cfg.PosterURL,
		status:          StatusIdle,
		volume:          1,
		restoreVolume:   1,
		rate:            1,
		controlsVisible: true,
	}

	if !ValidSource(cfg.SourceURL) || s.media == nil {
		s.unavailable = true
		s.errKind = ErrorKindSourceUnavailable
		s.logger.Info("playback source unavailable", "error", ErrSourceUnavailable)
		return s
	}

	s.status = StatusLoading
	s.unsubscribe = append(s.unsubscribe, s.media.Subscribe(s.handleMediaEvent))
	if s.fullscreen != nil {
		s.unsubscribe = append(s.unsubscribe, s.fullscreen.SubscribeChange(s.handleFullscreenChange))
	}
	s.media.Load(cfg.SourceURL)

	return s
}

// ValidSource reports whether raw can be handed to a media primitive:
// an absolute http(s) URL with a host, or an absolute path.
func ValidSource(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "":
		return strings.HasPrefix(u.Path, "/")
	default:
		return false
	}
}

// Close tears the session down: timers are stopped and subscriptions
// released. Notifications and timer callbacks arriving afterwards are
// dropped. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.hideTimer.stop()
	s.flashTimer.stop()
	s.skipTimer.stop()
	s.fsTimer.stop()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	s.logger.Debug("playback session closed")
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// mutate runs fn under the session lock. fn reports whether observable
// state changed; if so the version is bumped and OnChange is notified
// after the lock is released.
func (s *Session) mutate(fn func() bool) {
	s.mu.Lock()
	if s.closed || !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(snap)
	}
}

// operableLocked guards every transport operation.
func (s *Session) operableLocked(op string) bool {
	if s.unavailable || s.status == StatusErrored {
		s.logger.Debug("transport operation ignored", "op", op, "status", s.status, "error", ErrGuardViolation)
		return false
	}
	return true
}

func (s *Session) arm(slot *timerSlot, d time.Duration, fire func() bool) {
	slot.stop()
	gen := slot.gen
	slot.timer = s.clock.AfterFunc(d, func() {
		s.mutate(func() bool {
			if slot.gen != gen {
				return false
			}
			slot.timer = nil
			return fire()
		})
	})
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Version:         s.version,
		SourceURL:       s.sourceURL,
		PosterURL:       s.posterURL,
		Unavailable:     s.unavailable,
		Status:          s.status,
		ErrorKind:       s.errKind,
		Position:        s.position,
		Duration:        s.duration,
		DurationKnown:   s.durationKnown,
		Buffered:        s.buffered,
		Volume:          s.volume,
		RestoreVolume:   s.restoreVolume,
		Muted:           s.muted,
		PlaybackRate:    s.rate,
		ControlsVisible: s.controlsVisible,
		Fullscreen:      s.isFullscreen,
		ShowSettings:    s.showSettings,
		Scrubbing:       s.scrubbing,
		ToggleFlash:     s.toggleFlash,
		SkipFlash:       s.skipFlash,
	}
}

// Snapshot is an immutable copy of a session's state. Version grows with
// every observable change.
type Snapshot struct {
	Version         uint64    `json:"version"`
	SourceURL       string    `json:"source_url"`
	PosterURL       string    `json:"poster_url,omitempty"`
	Unavailable     bool      `json:"unavailable"`
	Status          Status    `json:"status"`
	ErrorKind       ErrorKind `json:"error_kind"`
	Position        float64   `json:"position"`
	Duration        float64   `json:"duration"`
	DurationKnown   bool      `json:"duration_known"`
	Buffered        float64   `json:"buffered"`
	Volume          float64   `json:"volume"`
	RestoreVolume   float64   `json:"restore_volume"`
	Muted           bool      `json:"muted"`
	PlaybackRate    float64   `json:"playback_rate"`
	ControlsVisible bool      `json:"controls_visible"`
	Fullscreen      bool      `json:"fullscreen"`
	ShowSettings    bool      `json:"show_settings"`
	Scrubbing       bool      `json:"scrubbing"`
	ToggleFlash     bool      `json:"toggle_flash"`
	SkipFlash       int       `json:"skip_flash"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
