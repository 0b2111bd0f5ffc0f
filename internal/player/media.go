package player

// MediaEventKind names a native notification raised by a Media.
type MediaEventKind string

const (
	MediaMetadataLoaded MediaEventKind = "loadedmetadata"
	MediaTimeUpdate     MediaEventKind = "timeupdate"
	MediaProgress       MediaEventKind = "progress"
	MediaEnded          MediaEventKind = "ended"
	MediaWaiting        MediaEventKind = "waiting"
	MediaPlaying        MediaEventKind = "playing"
	MediaError          MediaEventKind = "error"
)

// MediaEvent is a native notification. Values (position, duration,
// buffered ranges) are read back from the Media when the event is handled.
type MediaEvent struct {
	Kind MediaEventKind
	Err  error
}

// TimeRange is one contiguous buffered range, in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Media is the media-playback primitive a Session drives.
//
// Implementations must never invoke a callback or a subscriber
// synchronously from inside one of these methods; results are delivered
// later, from the environment's own event source.
type Media interface {
	Load(sourceURL string)
	// Play requests playback. done receives nil on success or the
	// rejection cause.
	Play(done func(error))
	Pause()
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	// Duration returns NaN while the duration is unknown.
	Duration() float64
	SetVolume(volume float64)
	SetPlaybackRate(rate float64)
	Buffered() []TimeRange
	Subscribe(handler func(MediaEvent)) (unsubscribe func())
}

// Fullscreen is the fullscreen capability of the player container.
// The same callback rules as Media apply.
type Fullscreen interface {
	RequestFullscreen(done func(error))
	ExitFullscreen(done func(error))
	// SubscribeChange delivers the environment's authoritative
	// fullscreen-change notifications.
	SubscribeChange(handler func(fullscreen bool)) (unsubscribe func())
}
