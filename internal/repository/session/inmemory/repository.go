package inmemory

import (
	"log/slog"
	"sync"

	"github.com/akflix/server/internal/repository/session"
)

type repo struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		sessions: make(map[string]*session.Session),
	}
}

func (r *repo) Add(s *session.Session) error {
	funcName := "session.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "session_id", s.ID)
	if _, ok := r.sessions[s.ID]; ok {
		slog.Info(funcName, "error", session.ErrAlreadyExists)
		return session.ErrAlreadyExists
	}

	r.sessions[s.ID] = s

	slog.Debug(funcName, "result", "OK")
	return nil
}

func (r *repo) Get(sessionID string) (*session.Session, error) {
	funcName := "session.inmemory.Get"
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		slog.Debug(funcName, "session_id", sessionID, "error", session.ErrNotFound)
		return nil, session.ErrNotFound
	}

	return s, nil
}

// Replace swaps the stored session with s and returns the previous one.
func (r *repo) Replace(s *session.Session) (*session.Session, error) {
	funcName := "session.inmemory.Replace"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "session_id", s.ID)
	prev, ok := r.sessions[s.ID]
	if !ok {
		slog.Info(funcName, "error", session.ErrNotFound)
		return nil, session.ErrNotFound
	}

	r.sessions[s.ID] = s

	slog.Debug(funcName, "result", "OK")
	return prev, nil
}

func (r *repo) Remove(sessionID string) (*session.Session, error) {
	funcName := "session.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "session_id", sessionID)
	s, ok := r.sessions[sessionID]
	if !ok {
		slog.Info(funcName, "error", session.ErrNotFound)
		return nil, session.ErrNotFound
	}

	delete(r.sessions, sessionID)

	slog.Debug(funcName, "result", "OK")
	return s, nil
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
