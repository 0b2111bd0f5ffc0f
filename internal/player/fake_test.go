package player

import (
	"math"
	"sync"
)

type fakeMedia struct {
	mu          sync.Mutex
	loaded      string
	current     float64
	duration    float64
	volume      float64
	rate        float64
	buffered    []TimeRange
	plays       []func(error)
	pauses      int
	seeks       []float64
	subscribers map[int]func(MediaEvent)
	nextID      int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		duration:    math.NaN(),
		volume:      1,
		rate:        1,
		subscribers: make(map[int]func(MediaEvent)),
	}
}

func (m *fakeMedia) Load(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = src
}

func (m *fakeMedia) Play(done func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, done)
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
}

func (m *fakeMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *fakeMedia) SetCurrentTime(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
	m.seeks = append(m.seeks, t)
}

func (m *fakeMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *fakeMedia) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

func (m *fakeMedia) SetPlaybackRate(r float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = r
}

func (m *fakeMedia) Buffered() []TimeRange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffered
}

func (m *fakeMedia) Subscribe(h func(MediaEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = h
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *fakeMedia) subscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// emit delivers ev to current subscribers.
func (m *fakeMedia) emit(ev MediaEvent) {
	m.mu.Lock()
	handlers := make([]func(MediaEvent), 0, len(m.subscribers))
	for _, h := range m.subscribers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (m *fakeMedia) loadMetadata(duration float64) {
	m.mu.Lock()
	m.duration = duration
	m.mu.Unlock()
	m.emit(MediaEvent{Kind: MediaMetadataLoaded})
}

func (m *fakeMedia) timeUpdate(t float64) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
	m.emit(MediaEvent{Kind: MediaTimeUpdate})
}

// resolvePlay completes the oldest pending play request.
func (m *fakeMedia) resolvePlay(err error) {
	m.mu.Lock()
	if len(m.plays) == 0 {
		m.mu.Unlock()
		return
	}
	done := m.plays[0]
	m.plays = m.plays[1:]
	m.mu.Unlock()
	done(err)
}

type fakeFullscreen struct {
	mu       sync.Mutex
	requests int
	exits    int
	pending  []func(error)
	handlers map[int]func(bool)
	nextID   int
}

func newFakeFullscreen() *fakeFullscreen {
	return &fakeFullscreen{handlers: make(map[int]func(bool))}
}

func (f *fakeFullscreen) RequestFullscreen(done func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	f.pending = append(f.pending, done)
}

func (f *fakeFullscreen) ExitFullscreen(done func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits++
	f.pending = append(f.pending, done)
}

func (f *fakeFullscreen) SubscribeChange(h func(bool)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = h
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

func (f *fakeFullscreen) change(fullscreen bool) {
	f.mu.Lock()
	handlers := make([]func(bool), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(fullscreen)
	}
}

func (f *fakeFullscreen) resolve(err error) {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return
	}
	done := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()
	done(err)
}
