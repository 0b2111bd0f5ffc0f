package controller

import (
	"context"
	"fmt"

	"github.com/akflix/server/internal/repository/session"
)

type contextKey int

const (
	sessionIDCtxKey contextKey = iota
)

func (c controller) getSessionIDFromCtx(ctx context.Context) string {
	sessionID, ok := ctx.Value(sessionIDCtxKey).(string)
	if !ok {
		return ""
	}

	return sessionID
}

// getSession returns the session currently registered for the connection.
// It changes identity when the source is changed.
func (c controller) getSession(ctx context.Context) (*session.Session, error) {
	sess, err := c.playbackService.GetSession(c.getSessionIDFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}
