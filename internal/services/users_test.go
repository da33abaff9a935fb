package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/validation"
)

func ids(users []models.User) []int64 {
	out := make([]int64, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func equalIDs(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAddUserDefaultsName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	blank := testUser("bob")
	blank.Name = "   "
	user, err := f.users.AddUser(ctx, blank)
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if user.Name != "bob" {
		t.Fatalf("expected name bob got %q", user.Name)
	}

	named := testUser("alice")
	named.Name = "Alice Liddell"
	user, err = f.users.AddUser(ctx, named)
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if user.Name != "Alice Liddell" {
		t.Fatalf("expected explicit name kept got %q", user.Name)
	}
}

func TestAddUserValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	today := models.DateOf(fixedNow())

	cases := []struct {
		name   string
		mutate func(*models.User)
	}{
		{"emailWithoutAt", func(u *models.User) { u.Email = "bob.example.com" }},
		{"loginWithSpace", func(u *models.User) { u.Login = "bob smith" }},
		{"birthdayTomorrow", func(u *models.User) { u.Birthday = today.AddDays(1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := testUser("bob")
			tc.mutate(&user)
			if _, err := f.users.AddUser(ctx, user); !errors.Is(err, validation.ErrInvalid) {
				t.Fatalf("expected validation error got %v", err)
			}
		})
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bob := mustAddUser(t, f, "bob")
	alice := mustAddUser(t, f, "alice")

	if err := f.users.AddFriend(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("add friend: %v", err)
	}

	replacement := testUser("robert")
	replacement.ID = bob.ID
	updated, err := f.users.UpdateUser(ctx, replacement)
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Login != "robert" || updated.Name != "robert" {
		t.Fatalf("unexpected user %+v", updated)
	}
	if updated.Friends.Len() != 0 {
		t.Fatalf("expected friends replaced by update body got %v", updated.Friends)
	}

	missing := testUser("ghost")
	missing.ID = 99
	if _, err := f.users.UpdateUser(ctx, missing); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	invalid := testUser("bob")
	invalid.ID = bob.ID
	invalid.Email = ""
	if _, err := f.users.UpdateUser(ctx, invalid); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestFriendshipIsSymmetric(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := mustAddUser(t, f, "a")
	b := mustAddUser(t, f, "b")

	for i := 0; i < 2; i++ {
		if err := f.users.AddFriend(ctx, a.ID, b.ID); err != nil {
			t.Fatalf("add friend: %v", err)
		}
	}

	friendsOfA, err := f.users.Friends(ctx, a.ID)
	if err != nil {
		t.Fatalf("friends of a: %v", err)
	}
	friendsOfB, err := f.users.Friends(ctx, b.ID)
	if err != nil {
		t.Fatalf("friends of b: %v", err)
	}
	if !equalIDs(ids(friendsOfA), b.ID) || !equalIDs(ids(friendsOfB), a.ID) {
		t.Fatalf("expected symmetric single edge got %v and %v", ids(friendsOfA), ids(friendsOfB))
	}

	if err := f.users.RemoveFriend(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("remove friend: %v", err)
	}
	if err := f.users.RemoveFriend(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("remove missing edge should be a no-op: %v", err)
	}

	friendsOfA, _ = f.users.Friends(ctx, a.ID)
	friendsOfB, _ = f.users.Friends(ctx, b.ID)
	if len(friendsOfA) != 0 || len(friendsOfB) != 0 {
		t.Fatalf("expected both edges removed got %v and %v", ids(friendsOfA), ids(friendsOfB))
	}
}

func TestFriendshipNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := mustAddUser(t, f, "a")

	if err := f.users.AddFriend(ctx, a.ID, 99); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if err := f.users.AddFriend(ctx, 99, a.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if err := f.users.RemoveFriend(ctx, a.ID, 99); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if _, err := f.users.Friends(ctx, 99); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if _, err := f.users.CommonFriends(ctx, a.ID, 99); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	stored, _ := f.users.UserByID(ctx, a.ID)
	if stored.Friends.Len() != 0 {
		t.Fatalf("failed add must not leave a half edge, got %v", stored.Friends)
	}
}

func TestCommonFriends(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := mustAddUser(t, f, "a")
	b := mustAddUser(t, f, "b")
	c := mustAddUser(t, f, "c")
	d := mustAddUser(t, f, "d")
	e := mustAddUser(t, f, "e")

	for _, edge := range [][2]int64{{a.ID, c.ID}, {a.ID, d.ID}, {b.ID, c.ID}, {b.ID, d.ID}, {b.ID, e.ID}} {
		if err := f.users.AddFriend(ctx, edge[0], edge[1]); err != nil {
			t.Fatalf("add friend: %v", err)
		}
	}

	common, err := f.users.CommonFriends(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("common friends: %v", err)
	}
	if !equalIDs(ids(common), c.ID, d.ID) {
		t.Fatalf("expected common friends [%d %d] got %v", c.ID, d.ID, ids(common))
	}
	if common[0].Login != "c" {
		t.Fatalf("expected full user records got %+v", common[0])
	}

	none, err := f.users.CommonFriends(ctx, a.ID, e.ID)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty result got %v (%v)", none, err)
	}
}

func TestFriendsSkipsUnresolvedIDs(t *testing.T) {
	userRepo := repositories.NewMemoryUserRepository()
	users := NewUserService(userRepo)
	ctx := context.Background()

	a, _ := users.AddUser(ctx, testUser("a"))
	b, _ := users.AddUser(ctx, testUser("b"))
	c, _ := users.AddUser(ctx, testUser("c"))
	if err := users.AddFriend(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("add friend: %v", err)
	}
	if err := users.AddFriend(ctx, a.ID, c.ID); err != nil {
		t.Fatalf("add friend: %v", err)
	}

	if err := userRepo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	friends, err := users.Friends(ctx, a.ID)
	if err != nil {
		t.Fatalf("friends: %v", err)
	}
	if !equalIDs(ids(friends), c.ID) {
		t.Fatalf("expected only resolvable friend %d got %v", c.ID, ids(friends))
	}
}

func TestUserServiceUsesCurrentTimeByDefault(t *testing.T) {
	users := NewUserService(repositories.NewMemoryUserRepository())
	user := testUser("bob")
	user.Birthday = models.DateOf(time.Now()).AddDays(2)
	if _, err := users.AddUser(context.Background(), user); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected future birthday rejected got %v", err)
	}
}

func TestUpdateUserDefaultsBlankName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bob := mustAddUser(t, f, "bob")

	cases := []struct {
		name     string
		given    string
		wantName string
	}{
		{"empty", "", "robert"},
		{"whitespace", "   ", "robert"},
		{"explicit", "Robert Paulson", "Robert Paulson"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			replacement := testUser("robert")
			replacement.ID = bob.ID
			replacement.Name = tc.given

			updated, err := f.users.UpdateUser(ctx, replacement)
			if err != nil {
				t.Fatalf("update user: %v", err)
			}
			if updated.Name != tc.wantName {
				t.Fatalf("expected name %q got %q", tc.wantName, updated.Name)
			}

			stored, err := f.users.UserByID(ctx, bob.ID)
			if err != nil {
				t.Fatalf("get user: %v", err)
			}
			if stored.Name != tc.wantName {
				t.Fatalf("expected stored name %q got %q", tc.wantName, stored.Name)
			}
		})
	}
}

func TestWithNowFuncControlsBirthdayCheck(t *testing.T) {
	past := func() time.Time { return time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC) }
	users := NewUserService(repositories.NewMemoryUserRepository()).WithNowFunc(past)

	if _, err := users.AddUser(context.Background(), testUser("bob")); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected 1990 birthday to be in the future of 1980, got %v", err)
	}

	users.WithNowFunc(nil)
	if _, err := users.AddUser(context.Background(), testUser("bob")); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected nil clock to keep the previous one, got %v", err)
	}

	users.WithNowFunc(fixedNow)
	if _, err := users.AddUser(context.Background(), testUser("bob")); err != nil {
		t.Fatalf("expected 1990 birthday to be valid in 2024, got %v", err)
	}
}

// edgeStore records atomic edge writes and counts full record updates.
type edgeStore struct {
	*repositories.MemoryStore[models.User]

	mu       sync.Mutex
	linked   [][2]int64
	unlinked [][2]int64
	updates  int
	err      error
}

func (s *edgeStore) Update(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	s.updates++
	s.mu.Unlock()
	return s.MemoryStore.Update(ctx, user)
}

func (s *edgeStore) LinkFriends(_ context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.linked = append(s.linked, [2]int64{userID, friendID})
	return nil
}

func (s *edgeStore) UnlinkFriends(_ context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.unlinked = append(s.unlinked, [2]int64{userID, friendID})
	return nil
}

func TestFriendshipUsesAtomicEdgeWrites(t *testing.T) {
	ctx := context.Background()
	store := &edgeStore{MemoryStore: repositories.NewMemoryUserRepository()}
	users := NewUserService(store).WithNowFunc(fixedNow)

	a, err := users.AddUser(ctx, testUser("a"))
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	b, err := users.AddUser(ctx, testUser("b"))
	if err != nil {
		t.Fatalf("add user: %v", err)
	}

	if err := users.AddFriend(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("add friend: %v", err)
	}
	if err := users.RemoveFriend(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("remove friend: %v", err)
	}

	if len(store.linked) != 1 || store.linked[0] != [2]int64{a.ID, b.ID} {
		t.Fatalf("expected one link of %d and %d got %v", a.ID, b.ID, store.linked)
	}
	if len(store.unlinked) != 1 || store.unlinked[0] != [2]int64{b.ID, a.ID} {
		t.Fatalf("expected one unlink of %d and %d got %v", b.ID, a.ID, store.unlinked)
	}
	if store.updates != 0 {
		t.Fatalf("expected no full record updates got %d", store.updates)
	}

	if err := users.AddFriend(ctx, a.ID, 99); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if len(store.linked) != 1 {
		t.Fatalf("expected no edge written for a missing user got %v", store.linked)
	}

	store.err = repositories.ErrNotFound
	if err := users.AddFriend(ctx, a.ID, b.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected store error to surface got %v", err)
	}
}
