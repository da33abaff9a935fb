package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/validation"
)

// UserService manages users and the symmetric friendship relation between them.
type UserService struct {
	users repositories.UserRepository
	now   func() time.Time

	mu sync.Mutex
}

// NewUserService constructs a UserService backed by the provided repository.
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

// WithNowFunc overrides the clock used to reject future birthdays. Call it
// before the service handles requests.
func (s *UserService) WithNowFunc(now func() time.Time) *UserService {
	if now != nil {
		s.now = now
	}
	return s
}

// AddUser stores a new user. A blank name is replaced with the login.
func (s *UserService) AddUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "users.add")
	defer span.End()

	user = defaultName(user)
	if err := s.validate(ctx, user); err != nil {
		return models.User{}, err
	}

	created, err := s.users.Add(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("add user: %w", err)
	}

	logging.FromContext(ctx).Info("user added", slog.Int64("user_id", created.ID))
	return created, nil
}

// UpdateUser replaces an existing user. Friends are replaced too, so callers
// must send the current set to keep it.
func (s *UserService) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "users.update")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.user(ctx, user.ID); err != nil {
		return models.User{}, err
	}

	user = defaultName(user)
	if err := s.validate(ctx, user); err != nil {
		return models.User{}, err
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return models.User{}, wrapLookup(err, "user", user.ID)
	}

	logging.FromContext(ctx).Info("user updated", slog.Int64("user_id", updated.ID))
	return updated, nil
}

// UserByID returns a single user.
func (s *UserService) UserByID(ctx context.Context, id int64) (models.User, error) {
	return s.user(ctx, id)
}

// Users returns every user.
func (s *UserService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// AddFriend links two users in both directions. Repeating it is a no-op.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	return s.changeFriendship(ctx, "users.befriend", userID, friendID, true)
}

// RemoveFriend unlinks two users in both directions. Removing a missing edge is a no-op.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	return s.changeFriendship(ctx, "users.unfriend", userID, friendID, false)
}

func (s *UserService) changeFriendship(ctx context.Context, spanName string, userID, friendID int64, link bool) error {
	ctx, span := logging.StartSpan(ctx, spanName)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := s.user(ctx, friendID)
	if err != nil {
		return err
	}

	if edges, ok := s.users.(repositories.FriendshipStore); ok {
		err = writeEdges(ctx, edges, userID, friendID, link)
	} else {
		err = s.replaceFriends(ctx, user, friend, link)
	}
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("friendship changed",
		slog.Int64("user_id", userID),
		slog.Int64("friend_id", friendID),
		slog.Bool("linked", link),
	)
	return nil
}

func writeEdges(ctx context.Context, edges repositories.FriendshipStore, userID, friendID int64, link bool) error {
	if link {
		if err := edges.LinkFriends(ctx, userID, friendID); err != nil {
			return fmt.Errorf("link users %d and %d: %w", userID, friendID, err)
		}
		return nil
	}
	if err := edges.UnlinkFriends(ctx, userID, friendID); err != nil {
		return fmt.Errorf("unlink users %d and %d: %w", userID, friendID, err)
	}
	return nil
}

// replaceFriends rewrites the friend sets of both records. A self edge lives
// on a single record.
func (s *UserService) replaceFriends(ctx context.Context, user, friend models.User, link bool) error {
	toggle := func(set models.IDSet, id int64) models.IDSet {
		if link {
			return set.Add(id)
		}
		set.Remove(id)
		return set
	}

	user.Friends = toggle(user.Friends, friend.ID)
	if user.ID == friend.ID {
		if _, err := s.users.Update(ctx, user); err != nil {
			return wrapLookup(err, "user", user.ID)
		}
		return nil
	}
	friend.Friends = toggle(friend.Friends, user.ID)

	if _, err := s.users.Update(ctx, user); err != nil {
		return wrapLookup(err, "user", user.ID)
	}
	if _, err := s.users.Update(ctx, friend); err != nil {
		return wrapLookup(err, "user", friend.ID)
	}
	return nil
}

// Friends returns the users befriended by userID. Friend ids that no longer
// resolve to a user are skipped.
func (s *UserService) Friends(ctx context.Context, userID int64) ([]models.User, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, user.Friends)
}

// CommonFriends returns the users befriended by both userID and otherID.
func (s *UserService) CommonFriends(ctx context.Context, userID, otherID int64) ([]models.User, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.user(ctx, otherID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, user.Friends.Intersect(other.Friends))
}

// resolve loads the users for ids in ascending id order.
func (s *UserService) resolve(ctx context.Context, ids models.IDSet) ([]models.User, error) {
	out := make([]models.User, 0, ids.Len())
	for _, id := range ids.Slice() {
		friend, err := s.users.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				logging.FromContext(ctx).Debug("skipping unresolved friend", slog.Int64("friend_id", id))
				continue
			}
			return nil, wrapLookup(err, "user", id)
		}
		out = append(out, friend)
	}
	return out, nil
}

func (s *UserService) user(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return models.User{}, wrapLookup(err, "user", id)
	}
	return user, nil
}

func (s *UserService) validate(ctx context.Context, user models.User) error {
	if err := validation.User(user, s.now()); err != nil {
		logging.FromContext(ctx).Warn("user validation failed", "error", err, "user_id", user.ID)
		return err
	}
	return nil
}

func defaultName(user models.User) models.User {
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	return user
}
