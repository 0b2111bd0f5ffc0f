package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/akflix/server/pkg/validator"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrRateLimited        = errors.New("message rate limit exceeded")
	ErrInvalidPayload     = errors.New("invalid payload")
)

// ValidationErrors is returned by a Bind handler whose input failed
// validation.
type ValidationErrors []validator.ValidationError

func (e ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e))
}

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Conn serializes writes to a websocket connection, which allows a single
// concurrent writer only.
type Conn struct {
	*websocket.Conn
	mu sync.Mutex
}

func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{Conn: conn}
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

type HandlerFunc func(ctx context.Context, conn *Conn, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler is called for every message that could not be handled.
type ErrorHandler func(ctx context.Context, conn *Conn, messageType string, err error)

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
	limit       rate.Limit
	burst       int
	onError     ErrorHandler
	onServe     func(ctx context.Context, messageType string, known bool, err error)
}

type Option func(*WSRouter)

// WithRateLimit limits inbound messages per connection.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(r *WSRouter) {
		r.limit = limit
		r.burst = burst
	}
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(r *WSRouter) {
		r.onError = h
	}
}

// WithServeHook is called after every inbound message.
func WithServeHook(h func(ctx context.Context, messageType string, known bool, err error)) Option {
	return func(r *WSRouter) {
		r.onServe = h
	}
}

func New(opts ...Option) *WSRouter {
	r := &WSRouter{
		routes: make(map[string]HandlerFunc),
		limit:  rate.Inf,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Use appends middlewares wrapping every handler registered afterwards.
func (r *WSRouter) Use(mws ...Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	r.routes[messageType] = handler
}

// Bind adapts a typed handler: the payload is decoded into T and, when v
// is not nil, validated before fn runs.
func Bind[T any](v *validator.Validator, fn func(ctx context.Context, conn *Conn, input T) error) HandlerFunc {
	return func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 && string(payload) != "null" {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
		}

		if v != nil {
			if errs, ok := v.Validate(input); !ok {
				return ValidationErrors(errs)
			}
		}

		return fn(ctx, conn, input)
	}
}

// ServeConn reads and dispatches messages until the connection fails or
// ctx is done. Handler errors do not end the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *Conn) error {
	defer conn.Close()

	limiter := rate.NewLimiter(r.limit, r.burst)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, known := r.routes[msg.Type]
		err := r.dispatch(ctx, conn, limiter, msg, handler, known)
		if r.onServe != nil {
			r.onServe(ctx, msg.Type, known, err)
		}
		if err != nil && r.onError != nil {
			r.onError(ctx, conn, msg.Type, err)
		}
	}
}

func (r *WSRouter) dispatch(ctx context.Context, conn *Conn, limiter *rate.Limiter, msg message, handler HandlerFunc, known bool) error {
	if !limiter.Allow() {
		return ErrRateLimited
	}
	if !known {
		return ErrUnknownMessageType
	}

	return handler(context.WithValue(ctx, messageTypeKey, msg.Type), conn, msg.Payload)
}
