package repository

import (
	"context"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// Staff is the façade for staff records. It implements domain.StaffRepository.
type Staff struct {
	facade
	src StaffSource
}

var _ domain.StaffRepository = (*Staff)(nil)

// GetStaffBySchool returns the public staff of a school in display order.
// Failures are logged and yield an empty list.
func (s *Staff) GetStaffBySchool(ctx context.Context, schoolID int64) []domain.Staff {
	if schoolID <= 0 {
		return []domain.Staff{}
	}

	staff, err := s.src.ListStaff(ctx, schoolID)
	if err != nil {
		s.readFailed("list_staff", schoolID, err)
		return []domain.Staff{}
	}
	s.ok()

	out := make([]domain.Staff, 0, len(staff))
	for _, st := range staff {
		if st.SchoolID == schoolID && st.IsPublic {
			out = append(out, st)
		}
	}
	s.dropped(schoolID, countForeign(staff, schoolID, func(st domain.Staff) int64 { return st.SchoolID }))
	return out
}

// CreateStaff stores a new staff record for the school.
func (s *Staff) CreateStaff(ctx context.Context, schoolID int64, in domain.StaffInput) (*domain.Staff, error) {
	if schoolID <= 0 {
		return nil, domain.ErrInvalidTenant
	}
	st, err := s.src.CreateStaff(ctx, schoolID, in)
	if err != nil {
		return nil, s.writeFailed("create_staff", schoolID, err)
	}
	return s.checkOwned(schoolID, st)
}

// UpdateStaff replaces the editable fields of a staff record of the school.
func (s *Staff) UpdateStaff(ctx context.Context, schoolID, id int64, in domain.StaffInput) (*domain.Staff, error) {
	if schoolID <= 0 {
		return nil, domain.ErrInvalidTenant
	}
	st, err := s.src.UpdateStaff(ctx, schoolID, id, in)
	if err != nil {
		return nil, s.writeFailed("update_staff", schoolID, err)
	}
	return s.checkOwned(schoolID, st)
}

// DeleteStaff removes a staff record of the school.
func (s *Staff) DeleteStaff(ctx context.Context, schoolID, id int64) error {
	if schoolID <= 0 {
		return domain.ErrInvalidTenant
	}
	if err := s.src.DeleteStaff(ctx, schoolID, id); err != nil {
		return s.writeFailed("delete_staff", schoolID, err)
	}
	s.ok()
	return nil
}

func (s *Staff) checkOwned(schoolID int64, st *domain.Staff) (*domain.Staff, error) {
	if st.SchoolID != schoolID {
		s.dropped(schoolID, 1)
		return nil, s.writeFailed("check_owner", schoolID, errForeignRecord)
	}
	s.ok()
	return st, nil
}
