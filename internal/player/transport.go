package player

import (
	"math"
)

// TogglePlay requests play when not playing and pause otherwise. The
// status flips optimistically; a rejected play request moves the session
// to StatusErrored.
func (s *Session) TogglePlay() {
	s.mutate(s.togglePlayLocked)
}

func (s *Session) togglePlayLocked() bool {
	if !s.operableLocked("toggle_play") {
		return false
	}
	if s.playIntent {
		s.pauseLocked()
	} else {
		s.playLocked()
	}
	s.toggleFlash = true
	s.arm(&s.flashTimer, FlashDuration, func() bool {
		s.toggleFlash = false
		return true
	})
	return true
}

func (s *Session) playLocked() {
	if s.status == StatusEnded {
		s.position = 0
		s.media.SetCurrentTime(0)
	}
	s.playIntent = true
	s.playReq++
	req := s.playReq
	s.setStatusLocked(StatusPlaying)
	s.media.Play(func(err error) {
		s.mutate(func() bool {
			return s.handlePlayResultLocked(req, err)
		})
	})
}

func (s *Session) handlePlayResultLocked(req uint64, err error) bool {
	if err == nil {
		s.hasPlayed = true
		return false
	}
	// A pause issued after this request aborts it; that is not a failure.
	if req != s.playReq || s.status == StatusErrored {
		s.logger.Debug("superseded play request rejected", "error", err)
		return false
	}
	s.failLocked(ErrorKindPlaybackRejected, err)
	return true
}

func (s *Session) pauseLocked() {
	s.playIntent = false
	s.playReq++
	s.media.Pause()
	s.setStatusLocked(StatusPaused)
}

// SeekTo moves playback to an absolute position in seconds.
func (s *Session) SeekTo(seconds float64) {
	s.mutate(func() bool {
		return s.seekLocked("seek", seconds)
	})
}

// SeekFraction moves playback to fraction of the duration.
func (s *Session) SeekFraction(fraction float64) {
	s.mutate(func() bool {
		return s.seekFractionLocked(fraction)
	})
}

func (s *Session) seekFractionLocked(fraction float64) bool {
	if !s.seekableLocked("seek_fraction") {
		return false
	}
	return s.seekLocked("seek_fraction", fraction*s.duration)
}

func (s *Session) seekableLocked(op string) bool {
	if !s.operableLocked(op) {
		return false
	}
	if !s.durationKnown || !s.status.seekable() {
		s.logger.Debug("seek ignored", "op", op, "status", s.status, "duration_known", s.durationKnown, "error", ErrGuardViolation)
		return false
	}
	return true
}

func (s *Session) seekLocked(op string, target float64) bool {
	if !s.seekableLocked(op) {
		return false
	}
	if !finite(target) {
		s.logger.Debug("seek target rejected", "op", op, "target", target, "error", ErrGuardViolation)
		return false
	}
	s.applySeekLocked(clamp(target, 0, s.duration))
	return true
}

// applySeekLocked sets the position optimistically. The next time update
// from the media replaces it.
func (s *Session) applySeekLocked(target float64) {
	s.position = target
	s.media.SetCurrentTime(target)
}

// Skip moves playback by delta seconds, clamped to the asset.
func (s *Session) Skip(delta float64) {
	s.mutate(func() bool {
		return s.skipLocked(delta)
	})
}

func (s *Session) skipLocked(delta float64) bool {
	if !s.seekableLocked("skip") {
		return false
	}
	target := clamp(s.position+delta, 0, s.duration)
	if math.IsNaN(target) {
		s.logger.Debug("skip target rejected", "delta", delta, "error", ErrGuardViolation)
		return false
	}
	s.applySeekLocked(target)

	switch {
	case delta > 0:
		s.skipFlash = 1
	case delta < 0:
		s.skipFlash = -1
	}
	s.arm(&s.skipTimer, FlashDuration, func() bool {
		s.skipFlash = 0
		return true
	})
	return true
}

// SetVolume sets the volume, clamped to [0, 1]. Zero mutes.
func (s *Session) SetVolume(volume float64) {
	s.mutate(func() bool {
		return s.setVolumeLocked(volume)
	})
}

func (s *Session) setVolumeLocked(volume float64) bool {
	if !s.operableLocked("set_volume") {
		return false
	}
	if math.IsNaN(volume) {
		s.logger.Debug("volume rejected", "error", ErrGuardViolation)
		return false
	}
	volume = clamp(volume, 0, 1)
	s.volume = volume
	s.muted = volume == 0
	if volume > 0 {
		s.restoreVolume = volume
	}
	s.media.SetVolume(volume)
	return true
}

func (s *Session) stepVolumeLocked(step float64) bool {
	return s.setVolumeLocked(math.Round((s.volume+step)*100) / 100)
}

// ToggleMute mutes, remembering the current volume, or restores it.
func (s *Session) ToggleMute() {
	s.mutate(s.toggleMuteLocked)
}

func (s *Session) toggleMuteLocked() bool {
	if !s.operableLocked("toggle_mute") {
		return false
	}
	if s.muted {
		restore := s.restoreVolume
		if restore <= 0 {
			restore = DefaultRestoreVolume
		}
		s.volume = restore
		s.muted = false
	} else {
		if s.volume > 0 {
			s.restoreVolume = s.volume
		}
		s.volume = 0
		s.muted = true
	}
	s.media.SetVolume(s.volume)
	return true
}

// ToggleFullscreen asks the environment to enter or leave fullscreen.
// The fullscreen flag itself only follows change notifications.
func (s *Session) ToggleFullscreen() {
	s.mutate(s.toggleFullscreenLocked)
}

func (s *Session) toggleFullscreenLocked() bool {
	if !s.operableLocked("toggle_fullscreen") || s.fullscreen == nil {
		return false
	}
	if s.fullscreenPending {
		s.logger.Debug("fullscreen request debounced")
		return false
	}
	s.fullscreenPending = true
	s.arm(&s.fsTimer, FullscreenDebounce, func() bool {
		s.fullscreenPending = false
		return false
	})

	exiting := s.isFullscreen
	done := func(err error) {
		if err == nil {
			return
		}
		s.logger.Info("fullscreen request failed", "exit", exiting, "error", ErrFullscreenRequest, "cause", err)
	}
	if exiting {
		s.fullscreen.ExitFullscreen(done)
	} else {
		s.fullscreen.RequestFullscreen(done)
	}
	return false
}

// SetPlaybackRate applies one of PlaybackRates and closes the settings
// menu in the same update.
func (s *Session) SetPlaybackRate(rate float64) {
	s.mutate(func() bool {
		return s.setPlaybackRateLocked(rate)
	})
}

func (s *Session) setPlaybackRateLocked(rate float64) bool {
	if !s.operableLocked("set_playback_rate") {
		return false
	}
	if !validRate(rate) {
		s.logger.Debug("playback rate rejected", "rate", rate, "error", ErrGuardViolation)
		return false
	}
	s.rate = rate
	s.media.SetPlaybackRate(rate)
	if s.showSettings {
		s.showSettings = false
		s.restartHideLocked()
	}
	return true
}

// ReportError moves the session to StatusErrored. It is terminal: the
// first failure keeps its kind.
func (s *Session) ReportError(err error) {
	s.mutate(func() bool {
		if s.status == StatusErrored {
			s.logger.Debug("error already reported", "kind", s.errKind, "cause", err)
			return false
		}
		kind := ErrorKindSourceUnavailable
		if s.hasPlayed {
			kind = ErrorKindRuntime
		}
		s.failLocked(kind, err)
		return true
	})
}

func (s *Session) failLocked(kind ErrorKind, cause error) {
	s.status = StatusErrored
	s.errKind = kind
	s.playIntent = false
	s.scrubbing = false
	s.showSettings = false
	s.controlsVisible = true
	s.hideTimer.stop()
	s.logger.Warn("playback failed", "kind", kind, "error", kind.Err(), "cause", cause)
}

// setStatusLocked applies a status change and the controls visibility
// rules tied to it. While scrubbing the change is deferred until release.
func (s *Session) setStatusLocked(status Status) {
	if s.scrubbing && status != StatusSeeking {
		s.resumeStatus = status
		return
	}
	s.status = status
	switch status {
	case StatusPaused, StatusSeeking, StatusEnded:
		s.showControlsLocked()
	case StatusPlaying:
		s.restartHideLocked()
	}
}
