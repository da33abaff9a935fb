// Package services implements film and user workflows on top of the repositories.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/validation"
)

// DefaultTopCount is the number of popular films returned when the caller does not ask for a count.
const DefaultTopCount = 10

// FilmService manages films, likes and popularity ranking.
type FilmService struct {
	films repositories.FilmRepository
	users repositories.UserRepository

	mu sync.Mutex
}

// NewFilmService constructs a FilmService. The user repository is consulted
// to confirm that liking users exist.
func NewFilmService(films repositories.FilmRepository, users repositories.UserRepository) *FilmService {
	return &FilmService{films: films, users: users}
}

// AddFilm validates and stores a new film.
func (s *FilmService) AddFilm(ctx context.Context, film models.Film) (models.Film, error) {
	ctx, span := logging.StartSpan(ctx, "films.add")
	defer span.End()

	if err := validateFilm(ctx, film); err != nil {
		return models.Film{}, err
	}

	created, err := s.films.Add(ctx, film)
	if err != nil {
		return models.Film{}, fmt.Errorf("add film: %w", err)
	}

	logging.FromContext(ctx).Info("film added", slog.Int64("film_id", created.ID))
	return created, nil
}

// UpdateFilm replaces an existing film. Likes are replaced too, so callers
// must send the current set to keep it.
func (s *FilmService) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	ctx, span := logging.StartSpan(ctx, "films.update")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.film(ctx, film.ID); err != nil {
		return models.Film{}, err
	}
	if err := validateFilm(ctx, film); err != nil {
		return models.Film{}, err
	}

	updated, err := s.films.Update(ctx, film)
	if err != nil {
		return models.Film{}, wrapLookup(err, "film", film.ID)
	}

	logging.FromContext(ctx).Info("film updated", slog.Int64("film_id", updated.ID))
	return updated, nil
}

// FilmByID returns a single film.
func (s *FilmService) FilmByID(ctx context.Context, id int64) (models.Film, error) {
	return s.film(ctx, id)
}

// Films returns every film.
func (s *FilmService) Films(ctx context.Context) ([]models.Film, error) {
	films, err := s.films.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return films, nil
}

// AddLike records that userID likes filmID. Liking twice is a no-op.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	return s.changeLike(ctx, "films.like", filmID, userID, func(likes models.IDSet) models.IDSet {
		return likes.Add(userID)
	})
}

// RemoveLike withdraws a like. Removing an absent like is a no-op.
func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	return s.changeLike(ctx, "films.unlike", filmID, userID, func(likes models.IDSet) models.IDSet {
		likes.Remove(userID)
		return likes
	})
}

func (s *FilmService) changeLike(ctx context.Context, spanName string, filmID, userID int64, apply func(models.IDSet) models.IDSet) error {
	ctx, span := logging.StartSpan(ctx, spanName)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	film, err := s.film(ctx, filmID)
	if err != nil {
		return err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return wrapLookup(err, "user", userID)
	}

	film.Likes = apply(film.Likes)
	if _, err := s.films.Update(ctx, film); err != nil {
		return wrapLookup(err, "film", filmID)
	}

	logging.FromContext(ctx).Info("film likes changed",
		slog.Int64("film_id", filmID),
		slog.Int64("user_id", userID),
		slog.Int("likes", film.Likes.Len()),
	)
	return nil
}

// TopFilms returns up to count films ordered by like count, most liked
// first. Films with equal likes are ordered by id. A count of zero or less
// yields an empty result.
func (s *FilmService) TopFilms(ctx context.Context, count int) ([]models.Film, error) {
	if count <= 0 {
		return []models.Film{}, nil
	}

	films, err := s.films.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}

	sort.SliceStable(films, func(i, j int) bool {
		li, lj := films[i].Likes.Len(), films[j].Likes.Len()
		if li != lj {
			return li > lj
		}
		return films[i].ID < films[j].ID
	})

	if count < len(films) {
		films = films[:count]
	}
	return films, nil
}

func (s *FilmService) film(ctx context.Context, id int64) (models.Film, error) {
	film, err := s.films.Get(ctx, id)
	if err != nil {
		return models.Film{}, wrapLookup(err, "film", id)
	}
	return film, nil
}

func validateFilm(ctx context.Context, film models.Film) error {
	if err := validation.Film(film); err != nil {
		logging.FromContext(ctx).Warn("film validation failed", "error", err, "film_id", film.ID)
		return err
	}
	return nil
}
