// Package validation checks film and user fields before they are stored.
package validation

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/filmorate/backend/internal/models"
)

// MaxDescriptionLength is the longest film description accepted, in characters.
const MaxDescriptionLength = 200

// EarliestReleaseDate is the first public film screening; no release may predate it.
var EarliestReleaseDate = models.NewDate(1895, time.December, 28)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("validation failed")

// Error describes the first field that failed validation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalid) match any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func fail(field, message string) error {
	return &Error{Field: field, Message: message}
}

// Film validates film fields in a fixed order and reports the first failure.
func Film(film models.Film) error {
	if strings.TrimSpace(film.Name) == "" {
		return fail("name", "film name must not be empty")
	}
	if utf8.RuneCountInString(film.Description) > MaxDescriptionLength {
		return fail("description", "film description must not exceed 200 characters")
	}
	if film.ReleaseDate.IsZero() || film.ReleaseDate.Before(EarliestReleaseDate) {
		return fail("releaseDate", "film release date must not be earlier than 1895-12-28")
	}
	if film.Duration <= 0 {
		return fail("duration", "film duration must be a positive number")
	}
	return nil
}

// User validates user fields against the calendar date of now.
func User(user models.User, now time.Time) error {
	if strings.TrimSpace(user.Email) == "" || !strings.Contains(user.Email, "@") {
		return fail("email", "invalid email")
	}
	if strings.TrimSpace(user.Login) == "" || strings.Contains(user.Login, " ") {
		return fail("login", "invalid login")
	}
	if user.Birthday.IsZero() || user.Birthday.After(models.DateOf(now)) {
		return fail("birthday", "birthday must not be in the future")
	}
	return nil
}
