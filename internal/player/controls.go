package player

// PointerMove shows the controls and restarts the hide timer.
func (s *Session) PointerMove() {
	s.mutate(s.showControlsLocked)
}

// PointerEnter behaves like PointerMove.
func (s *Session) PointerEnter() {
	s.mutate(s.showControlsLocked)
}

func (s *Session) showControlsLocked() bool {
	changed := !s.controlsVisible
	s.controlsVisible = true
	s.restartHideLocked()
	return changed
}

// restartHideLocked re-arms the hide timer unless scrubbing or an open
// settings menu suppresses it.
func (s *Session) restartHideLocked() {
	s.hideTimer.stop()
	if s.scrubbing || s.showSettings {
		return
	}
	s.arm(&s.hideTimer, s.hideDelay, func() bool {
		if s.status != StatusPlaying || s.scrubbing || s.showSettings || !s.controlsVisible {
			return false
		}
		s.controlsVisible = false
		return true
	})
}

// BeginScrub starts dragging the progress indicator at fraction.
func (s *Session) BeginScrub(fraction float64) {
	s.mutate(func() bool {
		if s.scrubbing {
			return s.seekFractionLocked(fraction)
		}
		if !s.seekableLocked("begin_scrub") {
			return false
		}
		s.resumeStatus = s.status
		s.setStatusLocked(StatusSeeking)
		s.scrubbing = true
		s.hideTimer.stop()
		s.seekFractionLocked(fraction)
		return true
	})
}

// Scrub follows the pointer while dragging.
func (s *Session) Scrub(fraction float64) {
	s.mutate(func() bool {
		if !s.scrubbing {
			return false
		}
		return s.seekFractionLocked(fraction)
	})
}

// EndScrub commits the seek at fraction and restores the status that was
// current when scrubbing began.
func (s *Session) EndScrub(fraction float64) {
	s.mutate(func() bool {
		if !s.scrubbing {
			return false
		}
		s.seekFractionLocked(fraction)
		s.scrubbing = false
		s.setStatusLocked(s.resumeStatus)
		s.showControlsLocked()
		return true
	})
}

// ToggleSettings opens or closes the playback rate menu.
func (s *Session) ToggleSettings() {
	s.mutate(func() bool {
		if !s.operableLocked("toggle_settings") {
			return false
		}
		s.showSettings = !s.showSettings
		s.controlsVisible = true
		s.restartHideLocked()
		return true
	})
}

// CloseSettings closes the playback rate menu if it is open.
func (s *Session) CloseSettings() {
	s.mutate(func() bool {
		if !s.showSettings {
			return false
		}
		s.showSettings = false
		s.restartHideLocked()
		return true
	})
}

// SetFocus records whether the player region holds keyboard focus.
func (s *Session) SetFocus(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = focused
}
