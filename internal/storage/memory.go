package storage

import (
	"context"
	"fmt"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/filter"
	"github.com/zjgaokao/major-advisor/internal/major"
)

// MemoryStore keeps the catalog in a slice with a key index. It is
// immutable after construction and safe for concurrent use.
type MemoryStore struct {
	majors []major.Major
	index  map[major.Key]int
}

// NewMemoryStore copies majors into a new store. Duplicate keys are rejected.
func NewMemoryStore(majors []major.Major) (*MemoryStore, error) {
	s := &MemoryStore{
		majors: major.CloneAll(majors),
		index:  make(map[major.Key]int, len(majors)),
	}
	for i := range s.majors {
		key := s.majors[i].Key()
		if _, dup := s.index[key]; dup {
			return nil, fmt.Errorf("memory store: duplicate key %s", key)
		}
		s.index[key] = i
	}
	return s, nil
}

// ListMajors returns copies of the records matching f.
func (s *MemoryStore) ListMajors(ctx context.Context, f major.Filter) ([]major.Major, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return major.CloneAll(filter.Apply(s.majors, f)), nil
}

// GetMajor looks a record up by composite key.
func (s *MemoryStore) GetMajor(ctx context.Context, key major.Key) (*major.Major, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := s.index[key]
	if !ok {
		return nil, apperrors.NewNotFoundError(key.University, key.MajorCode)
	}
	m := s.majors[i].Clone()
	return &m, nil
}

// CountMajors returns the number of records.
func (s *MemoryStore) CountMajors(context.Context) (int, error) {
	return len(s.majors), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Backend returns "memory".
func (s *MemoryStore) Backend() string {
	return "memory"
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
