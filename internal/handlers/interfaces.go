package handlers

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// FilmService captures the film operations exposed over HTTP.
type FilmService interface {
	AddFilm(ctx context.Context, film models.Film) (models.Film, error)
	UpdateFilm(ctx context.Context, film models.Film) (models.Film, error)
	FilmByID(ctx context.Context, id int64) (models.Film, error)
	Films(ctx context.Context) ([]models.Film, error)
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	TopFilms(ctx context.Context, count int) ([]models.Film, error)
}

// UserService captures the user and friendship operations exposed over HTTP.
type UserService interface {
	AddUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	Users(ctx context.Context) ([]models.User, error)
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	Friends(ctx context.Context, userID int64) ([]models.User, error)
	CommonFriends(ctx context.Context, userID, otherID int64) ([]models.User, error)
}
