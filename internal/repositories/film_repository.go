package repositories

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// FilmRepository defines the data access contract for films and their likes.
type FilmRepository interface {
	Add(ctx context.Context, film models.Film) (models.Film, error)
	Update(ctx context.Context, film models.Film) (models.Film, error)
	Get(ctx context.Context, id int64) (models.Film, error)
	List(ctx context.Context) ([]models.Film, error)
	Delete(ctx context.Context, id int64) error
}

// NewMemoryFilmRepository returns an empty in-memory film store.
func NewMemoryFilmRepository() *MemoryStore[models.Film] {
	return NewMemoryStore[models.Film]()
}
