package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"guestbook/pkg/domain"
)

// DefaultTable is the table name used by the hosted guestbook.
const DefaultTable = "MyGuestbook"

// ErrInvalidTable is returned when a table name is not a plain identifier.
var ErrInvalidTable = errors.New("invalid table name")

// Store defines persistence operations for guestbook entries.
type Store interface {
	// InsertEntry persists e and returns it with the store-assigned ID.
	InsertEntry(ctx context.Context, e domain.Entry) (domain.Entry, error)
	// ListEntries returns every entry ordered by ID descending.
	ListEntries(ctx context.Context) ([]domain.Entry, error)
	// DeleteEntry removes the entry with id. Unknown ids are not an error.
	DeleteEntry(ctx context.Context, id int64) error
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// resolveTable defaults empty names and rejects anything that would need
// escaping inside SQL or a URL path.
func resolveTable(name string) (string, error) {
	if name == "" {
		return DefaultTable, nil
	}
	if !tableNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	return name, nil
}
