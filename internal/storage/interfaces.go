// Package storage serves admission records. Two backends implement the same
// read-only Repository: an in-memory slice and a SQLite copy of it. Both
// apply the shared filter predicate, so they agree on every query.
package storage

import (
	"context"

	"github.com/zjgaokao/major-advisor/internal/major"
)

// Repository is the read side of the catalog.
type Repository interface {
	// ListMajors returns every record matching f, in catalog order.
	// Returned records are copies.
	ListMajors(ctx context.Context, f major.Filter) ([]major.Major, error)

	// GetMajor returns the record with key or an errors.NotFoundError.
	GetMajor(ctx context.Context, key major.Key) (*major.Major, error)

	// CountMajors returns the catalog size.
	CountMajors(ctx context.Context) (int, error)

	// Ping verifies the backend can serve queries.
	Ping(ctx context.Context) error

	// Backend names the implementation for logs and metrics.
	Backend() string

	Close() error
}

// Ensure both backends implement Repository at compile time.
var (
	_ Repository = (*MemoryStore)(nil)
	_ Repository = (*DB)(nil)
)
