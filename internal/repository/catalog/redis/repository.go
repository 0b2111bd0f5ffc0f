package redis

import (
	"context"
	"fmt"
	"reflect"

	"github.com/redis/go-redis/v9"

	"github.com/akflix/server/internal/repository/catalog"
)

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) getMovieKey(movieID string) string {
	return "movie:" + movieID
}

// hSetStruct writes the redis-tagged fields of value.
func (r repo) hSetStruct(ctx context.Context, c redis.Pipeliner, key string, value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]any)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" || tag == "-" {
			continue
		}
		fields[tag] = v.Field(i).Interface()
	}

	c.HSet(ctx, key, fields)
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func (r repo) SetMovie(ctx context.Context, movie *catalog.Movie) error {
	return r.SeedMovies(ctx, []catalog.Movie{*movie})
}

func (r repo) SeedMovies(ctx context.Context, movies []catalog.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	pipe := r.rc.TxPipeline()
	for i := range movies {
		if movies[i].ID == "" {
			return catalog.ErrEmptyMovieID
		}
		key := r.getMovieKey(movies[i].ID)
		pipe.Del(ctx, key)
		r.hSetStruct(ctx, pipe, key, &movies[i])
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set movies: %w", err)
	}

	return nil
}

func (r repo) GetMovie(ctx context.Context, movieID string) (catalog.Movie, error) {
	if movieID == "" {
		return catalog.Movie{}, catalog.ErrEmptyMovieID
	}

	cmd := r.rc.HGetAll(ctx, r.getMovieKey(movieID))
	res, err := cmd.Result()
	if err != nil {
		return catalog.Movie{}, fmt.Errorf("failed to get movie: %w", err)
	}
	if len(res) == 0 {
		return catalog.Movie{}, catalog.ErrMovieNotFound
	}

	var movie catalog.Movie
	if err := cmd.Scan(&movie); err != nil {
		return catalog.Movie{}, fmt.Errorf("failed to scan movie: %w", err)
	}
	movie.ID = movieID

	return movie, nil
}
