package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/services"
)

// FilmHandler provides film, like and popularity endpoints.
type FilmHandler struct {
	Films FilmService
}

// List handles GET /films.
func (h FilmHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Films == nil {
		respondUnavailable(ctx, w, "film")
		return
	}

	films, err := h.Films.Films(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nonNil(films))
}

// Get handles GET /films/{id}.
func (h FilmHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Films == nil {
		respondUnavailable(ctx, w, "film")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	film, err := h.Films.FilmByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, film)
}

// Create handles POST /films.
func (h FilmHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Films == nil {
		respondUnavailable(ctx, w, "film")
		return
	}

	var film models.Film
	if err := decodeBody(r, &film); err != nil {
		logging.FromContext(ctx).Warn("invalid film payload", "error", err)
		respondBadRequest(ctx, w, err.Error())
		return
	}

	created, err := h.Films.AddFilm(ctx, film)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created)
}

// Update handles PUT /films.
func (h FilmHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Films == nil {
		respondUnavailable(ctx, w, "film")
		return
	}

	var film models.Film
	if err := decodeBody(r, &film); err != nil {
		logging.FromContext(ctx).Warn("invalid film payload", "error", err)
		respondBadRequest(ctx, w, err.Error())
		return
	}

	updated, err := h.Films.UpdateFilm(ctx, film)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}

// Like handles PUT /films/{id}/like/{userId}.
func (h FilmHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, FilmService.AddLike)
}

// Unlike handles DELETE /films/{id}/like/{userId}.
func (h FilmHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, FilmService.RemoveLike)
}

func (h FilmHandler) changeLike(w http.ResponseWriter, r *http.Request, op func(FilmService, context.Context, int64, int64) error) {
	ctx := r.Context()
	if h.Films == nil {
		respondUnavailable(ctx, w, "film")
		return
	}

	filmID, userID, err := pathIDs(r, "id", "userId")
	if err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	if err := op(h.Films, ctx, filmID, userID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondNoContent(w)
}

// Popular handles GET /films/popular?count=N.
func (h FilmHandler) Popular(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Films == nil {
		respondUnavailable(ctx, w, "film")
		return
	}

	count := services.DefaultTopCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(ctx, w, "count must be an integer")
			return
		}
		count = parsed
	}

	films, err := h.Films.TopFilms(ctx, count)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nonNil(films))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
