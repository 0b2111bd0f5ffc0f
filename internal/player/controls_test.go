package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func controlsHidden(ts testSession) func() bool {
	return func() bool {
		return !ts.Snapshot().ControlsVisible
	}
}

func TestControls_HideWhilePlaying(t *testing.T) {
	ts := playing(t)
	require.True(t, ts.Snapshot().ControlsVisible)

	ts.clock.Advance(ControlsHideDelay)
	require.Eventually(t, controlsHidden(ts), waitFor, time.Millisecond)

	ts.PointerMove()
	assert.True(t, ts.Snapshot().ControlsVisible, "pointer move shows controls immediately")

	ts.clock.Advance(ControlsHideDelay - time.Millisecond)
	assert.True(t, ts.Snapshot().ControlsVisible)

	ts.clock.Advance(time.Millisecond)
	require.Eventually(t, controlsHidden(ts), waitFor, time.Millisecond, "timer restarted by pointer move")

	ts.PointerEnter()
	assert.True(t, ts.Snapshot().ControlsVisible)
}

func TestControls_StayVisibleWhenPaused(t *testing.T) {
	ts := playing(t)
	ts.TogglePlay()
	require.Equal(t, StatusPaused, ts.Snapshot().Status)

	ts.clock.Advance(2 * ControlsHideDelay)
	assert.Never(t, controlsHidden(ts), 50*time.Millisecond, time.Millisecond)
}

func TestControls_PauseForcesVisible(t *testing.T) {
	ts := playing(t)
	ts.clock.Advance(ControlsHideDelay)
	require.Eventually(t, controlsHidden(ts), waitFor, time.Millisecond)

	ts.TogglePlay()
	assert.True(t, ts.Snapshot().ControlsVisible)
}

func TestControls_SettingsSuppressHide(t *testing.T) {
	ts := playing(t)
	ts.ToggleSettings()

	ts.clock.Advance(2 * ControlsHideDelay)
	assert.Never(t, controlsHidden(ts), 50*time.Millisecond, time.Millisecond)

	ts.CloseSettings()
	ts.clock.Advance(ControlsHideDelay)
	require.Eventually(t, controlsHidden(ts), waitFor, time.Millisecond)
}

func TestControls_ScrubSuppressesHide(t *testing.T) {
	ts := playing(t)

	ts.BeginScrub(0.2)
	snap := ts.Snapshot()
	assert.Equal(t, StatusSeeking, snap.Status)
	assert.True(t, snap.Scrubbing)
	assert.Equal(t, 20.0, snap.Position)

	ts.Scrub(0.3)
	assert.Equal(t, 30.0, ts.Snapshot().Position)

	ts.clock.Advance(2 * ControlsHideDelay)
	assert.Never(t, controlsHidden(ts), 50*time.Millisecond, time.Millisecond)

	ts.EndScrub(0.4)
	snap = ts.Snapshot()
	assert.Equal(t, StatusPlaying, snap.Status, "status restored after scrub")
	assert.False(t, snap.Scrubbing)
	assert.Equal(t, 40.0, snap.Position)
	assert.Equal(t, 40.0, ts.media.current)

	ts.clock.Advance(ControlsHideDelay)
	require.Eventually(t, controlsHidden(ts), waitFor, time.Millisecond)
}

func TestControls_ScrubDefersNativeStatus(t *testing.T) {
	ts := playing(t)
	ts.TogglePlay()

	ts.BeginScrub(0.5)
	ts.media.emit(MediaEvent{Kind: MediaPlaying})
	assert.Equal(t, StatusSeeking, ts.Snapshot().Status)

	ts.EndScrub(0.5)
	assert.Equal(t, StatusPlaying, ts.Snapshot().Status)
}

func TestControls_ScrubIgnoredWithoutDuration(t *testing.T) {
	ts := newTestSession(t, "/media/1.mp4")

	ts.BeginScrub(0.5)
	ts.Scrub(0.6)
	ts.EndScrub(0.7)

	snap := ts.Snapshot()
	assert.False(t, snap.Scrubbing)
	assert.Equal(t, StatusLoading, snap.Status)
}
