package remote

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akflix/server/internal/player"
)

type recorder struct {
	mu       sync.Mutex
	commands []Command
	err      error
}

func (r *recorder) send(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.commands = append(r.commands, cmd)
	return nil
}

func (r *recorder) last() Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commands[len(r.commands)-1]
}

func float(v float64) *float64 {
	return &v
}

func TestPeer_Commands(t *testing.T) {
	rec := &recorder{}
	p := New(rec.send, slog.Default())

	p.Load("/media/1.mp4")
	assert.Equal(t, Command{MediaID: p.ID(), Command: CommandLoad, SourceURL: "/media/1.mp4"}, rec.last())

	p.SetCurrentTime(42)
	assert.Equal(t, CommandSeek, rec.last().Command)
	assert.Equal(t, 42.0, *rec.last().Value)
	assert.Equal(t, 42.0, p.CurrentTime(), "seek updates the mirror")

	p.SetVolume(0.5)
	assert.Equal(t, 0.5, *rec.last().Value)

	p.SetPlaybackRate(1.5)
	assert.Equal(t, CommandSetPlaybackRate, rec.last().Command)

	p.Pause()
	assert.Equal(t, CommandPause, rec.last().Command)
	assert.True(t, math.IsNaN(p.Duration()))
}

func TestPeer_PlayRequest(t *testing.T) {
	rec := &recorder{}
	p := New(rec.send, slog.Default())

	results := make(chan error, 1)
	p.Play(func(err error) { results <- err })

	cmd := rec.last()
	require.Equal(t, CommandPlay, cmd.Command)
	require.NotEmpty(t, cmd.RequestID)

	require.NoError(t, p.ResolveRequest(cmd.RequestID, "NotAllowedError"))
	err := <-results
	assert.EqualError(t, err, "NotAllowedError")

	assert.ErrorIs(t, p.ResolveRequest(cmd.RequestID, ""), ErrUnknownRequest, "requests resolve once")
}

func TestPeer_PlaySendFailureResolvesAsynchronously(t *testing.T) {
	sendErr := errors.New("connection reset")
	rec := &recorder{err: sendErr}
	p := New(rec.send, slog.Default())

	results := make(chan error, 1)
	p.Play(func(err error) { results <- err })

	select {
	case err := <-results:
		assert.ErrorIs(t, err, sendErr)
	case <-time.After(time.Second):
		t.Fatal("play callback not invoked")
	}
}

func TestPeer_Notify(t *testing.T) {
	p := New((&recorder{}).send, slog.Default())

	var events []player.MediaEvent
	unsubscribe := p.Subscribe(func(ev player.MediaEvent) {
		events = append(events, ev)
	})

	p.Notify(Notification{
		Kind:        player.MediaMetadataLoaded,
		CurrentTime: float(0),
		Duration:    float(120),
	})
	p.Notify(Notification{
		Kind:     player.MediaProgress,
		Buffered: []player.TimeRange{{Start: 0, End: 30}},
	})
	p.Notify(Notification{Kind: player.MediaError, Error: "MEDIA_ERR_NETWORK"})

	assert.Equal(t, 120.0, p.Duration())
	assert.Equal(t, []player.TimeRange{{Start: 0, End: 30}}, p.Buffered())
	require.Len(t, events, 3)
	assert.Equal(t, player.MediaMetadataLoaded, events[0].Kind)
	assert.EqualError(t, events[2].Err, "MEDIA_ERR_NETWORK")

	unsubscribe()
	p.Notify(Notification{Kind: player.MediaEnded})
	assert.Len(t, events, 3)
}

func TestPeer_Close(t *testing.T) {
	rec := &recorder{}
	p := New(rec.send, slog.Default())

	var changes []bool
	p.SubscribeChange(func(fs bool) { changes = append(changes, fs) })
	p.FullscreenChanged(true)

	called := false
	p.RequestFullscreen(func(error) { called = true })
	id := rec.last().RequestID

	p.Close()
	p.FullscreenChanged(false)
	p.Pause()

	assert.Equal(t, []bool{true}, changes)
	assert.ErrorIs(t, p.ResolveRequest(id, ""), ErrPeerClosed)
	assert.False(t, called)
	assert.Equal(t, CommandRequestFullscreen, rec.last().Command, "no commands after close")
}

func TestPeer_DrivesSession(t *testing.T) {
	rec := &recorder{}
	p := New(rec.send, slog.Default())
	s := player.NewSession(player.Config{
		SourceURL:  "/media/1.mp4",
		Media:      p,
		Fullscreen: p,
	})
	defer s.Close()

	p.Notify(Notification{Kind: player.MediaMetadataLoaded, Duration: float(90)})
	s.TogglePlay()
	play := rec.last()
	require.Equal(t, CommandPlay, play.Command)
	require.NoError(t, p.ResolveRequest(play.RequestID, ""))
	p.Notify(Notification{Kind: player.MediaPlaying})
	p.Notify(Notification{Kind: player.MediaTimeUpdate, CurrentTime: float(12.5)})

	snap := s.Snapshot()
	assert.Equal(t, player.StatusPlaying, snap.Status)
	assert.Equal(t, 12.5, snap.Position)
	assert.Equal(t, 90.0, snap.Duration)
}
