package player

import "fmt"

// Status is the transport state of a playback session.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusPlaying
	StatusPaused
	StatusSeeking
	StatusEnded
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusSeeking:
		return "seeking"
	case StatusEnded:
		return "ended"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st := StatusIdle; st <= StatusErrored; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// seekable reports whether a seek may be issued while in s.
func (s Status) seekable() bool {
	switch s {
	case StatusReady, StatusPlaying, StatusPaused, StatusSeeking:
		return true
	default:
		return false
	}
}
