package models

// Film is a movie that users can like.
type Film struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ReleaseDate Date    `json:"releaseDate"`
	Duration    float64 `json:"duration"`
	Likes       IDSet   `json:"likes"`
}

// EntityID returns the store identifier of the film.
func (f Film) EntityID() int64 { return f.ID }

// WithEntityID returns a copy of the film carrying the provided identifier.
func (f Film) WithEntityID(id int64) Film {
	f.ID = id
	return f
}

// Clone returns a deep copy of the film.
func (f Film) Clone() Film {
	f.Likes = f.Likes.Clone()
	return f
}

// User is an account that can like films and befriend other users.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Birthday Date   `json:"birthday"`
	Friends  IDSet  `json:"friends"`
}

// EntityID returns the store identifier of the user.
func (u User) EntityID() int64 { return u.ID }

// WithEntityID returns a copy of the user carrying the provided identifier.
func (u User) WithEntityID(id int64) User {
	u.ID = id
	return u
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	u.Friends = u.Friends.Clone()
	return u
}
