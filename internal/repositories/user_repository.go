package repositories

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// UserRepository defines the data access contract for users and their friend edges.
type UserRepository interface {
	Add(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

// FriendshipStore is implemented by user stores that can write both
// directions of a friend edge in one atomic step. Linking an existing edge
// and unlinking a missing one are no-ops.
type FriendshipStore interface {
	LinkFriends(ctx context.Context, userID, friendID int64) error
	UnlinkFriends(ctx context.Context, userID, friendID int64) error
}

// NewMemoryUserRepository returns an empty in-memory user store.
func NewMemoryUserRepository() *MemoryStore[models.User] {
	return NewMemoryStore[models.User]()
}
