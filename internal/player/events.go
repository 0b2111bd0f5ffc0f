package player

func (s *Session) handleMediaEvent(ev MediaEvent) {
	s.mutate(func() bool {
		return s.handleMediaEventLocked(ev)
	})
}

// handleMediaEventLocked applies a native notification. The media is the
// only authority for position, duration and buffered seconds.
func (s *Session) handleMediaEventLocked(ev MediaEvent) bool {
	if s.status == StatusErrored {
		return false
	}

	switch ev.Kind {
	case MediaMetadataLoaded:
		if d := s.media.Duration(); finite(d) && d >= 0 {
			s.duration = d
			s.durationKnown = true
			s.buffered = clamp(s.buffered, 0, d)
		}
		if s.status == StatusLoading && !s.playIntent {
			s.status = StatusReady
		}
		return true

	case MediaTimeUpdate:
		if s.status == StatusEnded {
			return false
		}
		t := s.media.CurrentTime()
		if !finite(t) {
			return false
		}
		if s.durationKnown {
			t = clamp(t, 0, s.duration)
		}
		s.position = max(t, 0)
		return true

	case MediaProgress:
		var end float64
		for _, r := range s.media.Buffered() {
			if finite(r.End) && r.End > end {
				end = r.End
			}
		}
		if s.durationKnown {
			end = clamp(end, 0, s.duration)
		}
		s.buffered = end
		return true

	case MediaEnded:
		s.scrubbing = false
		s.playIntent = false
		s.playReq++
		s.position = 0
		s.setStatusLocked(StatusEnded)
		return true

	case MediaWaiting:
		// A paused element may stall while fetching a seek target; it
		// stays in its status since no playing event will follow.
		if s.status == StatusEnded || !s.playIntent {
			return false
		}
		s.setStatusLocked(StatusLoading)
		return true

	case MediaPlaying:
		s.hasPlayed = true
		s.playIntent = true
		s.setStatusLocked(StatusPlaying)
		return true

	case MediaError:
		kind := ErrorKindSourceUnavailable
		if s.hasPlayed {
			kind = ErrorKindRuntime
		}
		s.failLocked(kind, ev.Err)
		return true

	default:
		s.logger.Debug("unknown media event", "kind", ev.Kind)
		return false
	}
}

func (s *Session) handleFullscreenChange(fullscreen bool) {
	s.mutate(func() bool {
		if s.isFullscreen == fullscreen {
			return false
		}
		s.isFullscreen = fullscreen
		return true
	})
}
