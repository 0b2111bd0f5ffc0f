package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncPlaybackError_NormalizesKind(t *testing.T) {
	before := testutil.ToFloat64(playbackErrorsTotal.WithLabelValues(errorKindUnknown))
	IncPlaybackError("made_up")
	assert.Equal(t, before+1, testutil.ToFloat64(playbackErrorsTotal.WithLabelValues(errorKindUnknown)))

	before = testutil.ToFloat64(playbackErrorsTotal.WithLabelValues(errorKindRuntime))
	IncPlaybackError(errorKindRuntime)
	assert.Equal(t, before+1, testutil.ToFloat64(playbackErrorsTotal.WithLabelValues(errorKindRuntime)))
}

func TestIncWSMessage_CollapsesUnknownTypes(t *testing.T) {
	before := testutil.ToFloat64(wsMessagesTotal.WithLabelValues("unknown", "ignored"))
	IncWSMessage("DROP_TABLE", false, "ignored")
	assert.Equal(t, before+1, testutil.ToFloat64(wsMessagesTotal.WithLabelValues("unknown", "ignored")))
}

func TestSetSessionsActive(t *testing.T) {
	SetSessionsActive(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(sessionsActive))
}
