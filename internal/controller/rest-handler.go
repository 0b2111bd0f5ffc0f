package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akflix/server/internal/player"
	"github.com/akflix/server/internal/repository/catalog"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data envelope) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

type movieResponse struct {
	catalog.Movie
	Playable bool `json:"playable"`
}

func (c controller) getMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID := chi.URLParam(r, "movie-id")

	movie, err := c.playbackService.GetMovie(ctx, movieID)
	if err != nil {
		if errors.Is(err, catalog.ErrMovieNotFound) || errors.Is(err, catalog.ErrEmptyMovieID) {
			c.logger.InfoContext(ctx, "movie not found", "movie_id", movieID)
			writeJSON(w, http.StatusNotFound, envelope{"error": "movie not found"})
			return
		}

		c.logger.ErrorContext(ctx, "failed to get movie", "movie_id", movieID, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"data": movieResponse{
		Movie:    movie,
		Playable: player.ValidSource(movie.SourceURL),
	}})
}
