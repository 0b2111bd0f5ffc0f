package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/akflix/server/internal/metrics"
	"github.com/akflix/server/internal/player"
	"github.com/akflix/server/internal/remote"
	"github.com/akflix/server/internal/repository/catalog"
	"github.com/akflix/server/internal/repository/session"
)

type OpenSessionParams struct {
	MovieID  string
	Send     func(remote.Command) error
	Observer func(player.Snapshot)
}

type OpenSessionResponse struct {
	SessionID string
	MediaID   string
	Movie     catalog.Movie
	Snapshot  player.Snapshot
}

// OpenSession mounts a player for a movie. A movie that is missing from
// the catalog or has no source still gets a session; it is permanently
// unavailable.
func (s *service) OpenSession(ctx context.Context, params *OpenSessionParams) (OpenSessionResponse, error) {
	movie, err := s.resolveMovie(ctx, params.MovieID)
	if err != nil {
		return OpenSessionResponse{}, err
	}

	sess := s.newSession(ctx, uuid.NewString(), movie, params.Send, params.Observer)
	if err := s.sessionRepo.Add(sess); err != nil {
		s.teardown(sess)
		return OpenSessionResponse{}, fmt.Errorf("failed to add session: %w", err)
	}
	metrics.SetSessionsActive(s.sessionRepo.Len())

	s.logger.InfoContext(ctx, "playback session opened", "session_id", sess.ID, "movie_id", movie.ID)

	return OpenSessionResponse{
		SessionID: sess.ID,
		MediaID:   sess.Peer.ID(),
		Movie:     movie,
		Snapshot:  sess.Player.Snapshot(),
	}, nil
}

type ChangeSourceParams struct {
	SessionID string
	MovieID   string
}

type ChangeSourceResponse struct {
	MediaID  string
	Movie    catalog.Movie
	Snapshot player.Snapshot
}

// ChangeSource replaces the session's player with a fresh one for another
// movie. The old player and media binding are torn down before the new
// ones are wired, so nothing from the old source can reach the new state.
func (s *service) ChangeSource(ctx context.Context, params *ChangeSourceParams) (ChangeSourceResponse, error) {
	movie, err := s.resolveMovie(ctx, params.MovieID)
	if err != nil {
		return ChangeSourceResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.getSession(params.SessionID)
	if err != nil {
		return ChangeSourceResponse{}, err
	}
	s.teardown(prev)

	next := s.newSession(ctx, prev.ID, movie, prev.Send, prev.Observer)
	if _, err := s.sessionRepo.Replace(next); err != nil {
		s.teardown(next)
		return ChangeSourceResponse{}, fmt.Errorf("failed to replace session: %w", err)
	}

	s.logger.InfoContext(ctx, "playback source changed", "session_id", next.ID, "from_movie_id", prev.MovieID, "movie_id", movie.ID)

	return ChangeSourceResponse{
		MediaID:  next.Peer.ID(),
		Movie:    movie,
		Snapshot: next.Player.Snapshot(),
	}, nil
}

// CloseSession unmounts the player and forgets the session.
func (s *service) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionRepo.Remove(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to remove session: %w", err)
	}
	s.teardown(sess)
	metrics.SetSessionsActive(s.sessionRepo.Len())

	s.logger.InfoContext(ctx, "playback session closed", "session_id", sessionID)
	return nil
}

// GetSession returns the current player and media binding of a session.
func (s *service) GetSession(sessionID string) (*session.Session, error) {
	return s.getSession(sessionID)
}

func (s *service) getSession(sessionID string) (*session.Session, error) {
	sess, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

func (s *service) resolveMovie(ctx context.Context, movieID string) (catalog.Movie, error) {
	movie, err := s.catalogRepo.GetMovie(ctx, movieID)
	switch {
	case err == nil:
		return movie, nil
	case errors.Is(err, catalog.ErrMovieNotFound), errors.Is(err, catalog.ErrEmptyMovieID):
		s.logger.InfoContext(ctx, "movie not in catalog", "movie_id", movieID, "error", err)
		return catalog.Movie{ID: movieID}, nil
	default:
		return catalog.Movie{}, fmt.Errorf("failed to get movie: %w", err)
	}
}

func (s *service) newSession(ctx context.Context, id string, movie catalog.Movie, send func(remote.Command) error, observer func(player.Snapshot)) *session.Session {
	sess := &session.Session{
		ID:        id,
		MovieID:   movie.ID,
		CreatedAt: s.clock.Now(),
		Send:      send,
		Observer:  observer,
	}

	logger := s.logger.With("session_id", id, "movie_id", movie.ID)
	sess.Peer = remote.New(send, logger)
	sess.Player = player.NewSession(player.Config{
		SourceURL:  movie.SourceURL,
		PosterURL:  movie.PosterURL,
		Media:      sess.Peer,
		Fullscreen: sess.Peer,
		Clock:      s.clock,
		Logger:     logger,
		OnChange:   s.observe(sess),
		HideDelay:  s.hideDelay,
	})
	metrics.IncSessionOpened()

	if snap := sess.Player.Snapshot(); snap.Unavailable {
		metrics.IncPlaybackError(snap.ErrorKind.String())
		s.logger.InfoContext(ctx, "movie has no playable source", "session_id", id, "movie_id", movie.ID)
	}

	return sess
}

// observe forwards snapshots of sess while it is the registered player for
// its id. Snapshots from a superseded player are dropped.
func (s *service) observe(sess *session.Session) func(player.Snapshot) {
	var failed sync.Once
	return func(snap player.Snapshot) {
		current, err := s.sessionRepo.Get(sess.ID)
		if err != nil || current != sess {
			return
		}
		if snap.Status == player.StatusErrored {
			failed.Do(func() {
				metrics.IncPlaybackError(snap.ErrorKind.String())
			})
		}
		if sess.Observer != nil {
			sess.Observer(snap)
		}
	}
}

func (s *service) teardown(sess *session.Session) {
	sess.Player.Close()
	sess.Peer.Close()
}

// GetMovie looks a movie up in the catalog.
func (s *service) GetMovie(ctx context.Context, movieID string) (catalog.Movie, error) {
	movie, err := s.catalogRepo.GetMovie(ctx, movieID)
	if err != nil {
		return catalog.Movie{}, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}
