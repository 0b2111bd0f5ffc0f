package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akflix/server/pkg/validator"
)

type seekInput struct {
	Fraction *float64 `json:"fraction" validate:"required,gte=0,lte=1"`
}

type result struct {
	messageType string
	err         error
}

func serve(t *testing.T, r *WSRouter) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		_ = r.ServeConn(req.Context(), NewConn(conn))
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func collect(t *testing.T, opts ...Option) (*WSRouter, <-chan result, *[]float64, *sync.Mutex) {
	t.Helper()
	results := make(chan result, 16)
	var (
		mu   sync.Mutex
		seen []float64
	)

	opts = append(opts, WithServeHook(func(ctx context.Context, messageType string, known bool, err error) {
		results <- result{messageType: messageType, err: err}
	}))
	r := New(opts...)
	r.Handle("SEEK", Bind(validator.NewValidator(), func(ctx context.Context, conn *Conn, input seekInput) error {
		assert.Equal(t, "SEEK", GetMessageTypeFromCtx(ctx))
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, *input.Fraction)
		return nil
	}))

	return r, results, &seen, &mu
}

func next(t *testing.T, results <-chan result) result {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no message handled")
		return result{}
	}
}

func TestServeConn_Dispatch(t *testing.T) {
	r, results, seen, mu := collect(t)
	conn := serve(t, r)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "SEEK", "payload": map[string]any{"fraction": 0.25}}))
	res := next(t, results)
	assert.Equal(t, "SEEK", res.messageType)
	assert.NoError(t, res.err)

	mu.Lock()
	assert.Equal(t, []float64{0.25}, *seen)
	mu.Unlock()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "DANCE"}))
	assert.ErrorIs(t, next(t, results).err, ErrUnknownMessageType)
}

func TestServeConn_InvalidPayload(t *testing.T) {
	r, results, seen, mu := collect(t)
	conn := serve(t, r)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "SEEK", "payload": map[string]any{"fraction": 3}}))
	var verrs ValidationErrors
	require.True(t, errors.As(next(t, results).err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "fraction", verrs[0].Field)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "SEEK", "payload": "nonsense"}))
	assert.ErrorIs(t, next(t, results).err, ErrInvalidPayload)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "SEEK"}))
	assert.True(t, errors.As(next(t, results).err, &verrs), "missing payload fails validation")

	mu.Lock()
	assert.Empty(t, *seen)
	mu.Unlock()
}

func TestServeConn_RateLimit(t *testing.T) {
	r, results, _, _ := collect(t, WithRateLimit(0.001, 2))
	conn := serve(t, r)

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "SEEK", "payload": map[string]any{"fraction": 0.5}}))
	}
	assert.NoError(t, next(t, results).err)
	assert.NoError(t, next(t, results).err)
	assert.ErrorIs(t, next(t, results).err, ErrRateLimited)
}

func TestServeConn_ErrorHandler(t *testing.T) {
	errs := make(chan error, 1)
	r := New(WithErrorHandler(func(ctx context.Context, conn *Conn, messageType string, err error) {
		_ = conn.WriteJSON(map[string]string{"type": "ERROR", "error": err.Error()})
		errs <- err
	}))
	conn := serve(t, r)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NOPE"}))

	var out map[string]string
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "ERROR", out["type"])
	assert.ErrorIs(t, <-errs, ErrUnknownMessageType)
}

func TestUse_WrapsInOrder(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
				calls = append(calls, name)
				return next(ctx, conn, payload)
			}
		}
	}

	r := New()
	r.Use(mw("outer"), mw("inner"))
	r.Handle("PING", func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		calls = append(calls, "handler")
		return nil
	})

	require.NoError(t, r.routes["PING"](context.Background(), nil, nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}
