package player

import "errors"

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrPlaybackRejected  = errors.New("playback rejected")
	ErrRuntime           = errors.New("media runtime error")
	ErrFullscreenRequest = errors.New("fullscreen request failed")
	// ErrGuardViolation is only ever logged. Operations invalid for the
	// current state are silent no-ops.
	ErrGuardViolation = errors.New("operation not allowed in current state")
)

// ErrorKind classifies the fatal transition that put a session into
// StatusErrored, or the reason it never became available.
type ErrorKind uint8

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindSourceUnavailable
	ErrorKindPlaybackRejected
	ErrorKindRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindSourceUnavailable:
		return "source_unavailable"
	case ErrorKindPlaybackRejected:
		return "playback_rejected"
	case ErrorKindRuntime:
		return "runtime_error"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Err returns the sentinel error matching k, or nil for ErrorKindNone.
func (k ErrorKind) Err() error {
	switch k {
	case ErrorKindSourceUnavailable:
		return ErrSourceUnavailable
	case ErrorKindPlaybackRejected:
		return ErrPlaybackRejected
	case ErrorKindRuntime:
		return ErrRuntime
	default:
		return nil
	}
}
