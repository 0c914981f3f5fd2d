package database

import (
	"database/sql"
	"errors"
	"fmt"

	"estatehub/internal/domain"
)

// ErrConcurrentModification is returned by versioned updates that lost the race.
var ErrConcurrentModification = domain.ErrConcurrentModification

// notFound turns sql.ErrNoRows into domain.ErrNotFound for the named entity.
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, id, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}
