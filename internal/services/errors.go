package services

import (
	"errors"
	"fmt"

	"github.com/filmorate/backend/internal/repositories"
)

// wrapLookup names the entity an error refers to. Not-found errors keep
// matching repositories.ErrNotFound.
func wrapLookup(err error, entity string, id int64) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s with id %d: %w", entity, id, repositories.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", entity, id, err)
}
