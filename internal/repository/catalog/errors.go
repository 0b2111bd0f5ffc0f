package catalog

import "errors"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrEmptyMovieID  = errors.New("movie id is empty")
)
