package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errorKindSourceUnavailable = "source_unavailable"
	errorKindPlaybackRejected  = "playback_rejected"
	errorKindRuntime           = "runtime_error"
	errorKindUnknown           = "unknown"
)

var (
	sessionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "akflix",
		Name:      "playback_sessions_opened_total",
		Help:      "Playback sessions opened, including source changes",
	})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "akflix",
		Name:      "playback_sessions_active",
		Help:      "Playback sessions currently registered",
	})

	playbackErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "akflix",
		Name:      "playback_errors_total",
		Help:      "Terminal playback failures by kind",
	}, []string{"kind"})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "akflix",
		Name:      "ws_messages_total",
		Help:      "Inbound websocket messages by type and outcome",
	}, []string{"type", "outcome"})
)

// IncSessionOpened counts a new player session.
func IncSessionOpened() {
	sessionsOpenedTotal.Inc()
}

// SetSessionsActive records the number of registered sessions.
func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}

// IncPlaybackError counts a terminal failure with a normalized kind label.
func IncPlaybackError(kind string) {
	playbackErrorsTotal.WithLabelValues(normalizeErrorKind(kind)).Inc()
}

// IncWSMessage counts an inbound websocket message. Unknown types are
// collapsed so clients cannot grow label cardinality.
func IncWSMessage(messageType string, known bool, outcome string) {
	if !known {
		messageType = "unknown"
	}
	wsMessagesTotal.WithLabelValues(messageType, outcome).Inc()
}

func normalizeErrorKind(kind string) string {
	switch kind {
	case errorKindSourceUnavailable, errorKindPlaybackRejected, errorKindRuntime:
		return kind
	default:
		return errorKindUnknown
	}
}
