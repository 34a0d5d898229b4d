package repository

import (
	"context"
	"errors"

	"github.com/V4T54L/schoolsite/internal/domain"
)

var errForeignRecord = errors.New("backend returned a record of another school")

// Schools is the façade for the school catalog.
type Schools struct {
	facade
	src SchoolSource
}

var _ domain.SchoolRepository = (*Schools)(nil)

// ListSchools returns the catalog, or an empty list when it cannot be read.
func (s *Schools) ListSchools(ctx context.Context) []domain.Tenant {
	schools, err := s.src.ListSchools(ctx)
	if err != nil {
		s.readFailed("list_schools", 0, err)
		return []domain.Tenant{}
	}
	s.ok()
	return schools
}

func countForeign[T any](records []T, schoolID int64, owner func(T) int64) int {
	n := 0
	for _, r := range records {
		if owner(r) != schoolID {
			n++
		}
	}
	return n
}
