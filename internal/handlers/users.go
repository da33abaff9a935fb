package handlers

import (
	"context"
	"net/http"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
)

// UserHandler provides user and friendship endpoints.
type UserHandler struct {
	Users UserService
}

// List handles GET /users.
func (h UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Users == nil {
		respondUnavailable(ctx, w, "user")
		return
	}

	users, err := h.Users.Users(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nonNil(users))
}

// Get handles GET /users/{id}.
func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Users == nil {
		respondUnavailable(ctx, w, "user")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	user, err := h.Users.UserByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, user)
}

// Create handles POST /users.
func (h UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, http.StatusCreated, UserService.AddUser)
}

// Update handles PUT /users.
func (h UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, http.StatusOK, UserService.UpdateUser)
}

func (h UserHandler) save(w http.ResponseWriter, r *http.Request, status int, op func(UserService, context.Context, models.User) (models.User, error)) {
	ctx := r.Context()
	if h.Users == nil {
		respondUnavailable(ctx, w, "user")
		return
	}

	var user models.User
	if err := decodeBody(r, &user); err != nil {
		logging.FromContext(ctx).Warn("invalid user payload", "error", err)
		respondBadRequest(ctx, w, err.Error())
		return
	}

	saved, err := op(h.Users, ctx, user)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, status, saved)
}

// AddFriend handles PUT /users/{id}/friends/{friendId}.
func (h UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	h.changeFriendship(w, r, UserService.AddFriend)
}

// RemoveFriend handles DELETE /users/{id}/friends/{friendId}.
func (h UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	h.changeFriendship(w, r, UserService.RemoveFriend)
}

func (h UserHandler) changeFriendship(w http.ResponseWriter, r *http.Request, op func(UserService, context.Context, int64, int64) error) {
	ctx := r.Context()
	if h.Users == nil {
		respondUnavailable(ctx, w, "user")
		return
	}

	userID, friendID, err := pathIDs(r, "id", "friendId")
	if err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	if err := op(h.Users, ctx, userID, friendID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondNoContent(w)
}

// Friends handles GET /users/{id}/friends.
func (h UserHandler) Friends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Users == nil {
		respondUnavailable(ctx, w, "user")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	friends, err := h.Users.Friends(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nonNil(friends))
}

// CommonFriends handles GET /users/{id}/friends/common/{otherId}.
func (h UserHandler) CommonFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Users == nil {
		respondUnavailable(ctx, w, "user")
		return
	}

	userID, otherID, err := pathIDs(r, "id", "otherId")
	if err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	common, err := h.Users.CommonFriends(ctx, userID, otherID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nonNil(common))
}
