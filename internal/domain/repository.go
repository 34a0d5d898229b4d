package domain

import "context"

// SchoolRepository lists the tenant catalog.
type SchoolRepository interface {
	ListSchools(ctx context.Context) []Tenant
}

// PostRepository is the data access entry point for posts.
// Reads never fail: errors degrade to empty results.
type PostRepository interface {
	// GetPostsBySchool returns the published posts of a school, newest first.
	GetPostsBySchool(ctx context.Context, schoolID int64) []Post

	// GetPostBySlug returns a published post, or ErrNotFound.
	GetPostBySlug(ctx context.Context, schoolID int64, slug string) (*Post, error)

	CreatePost(ctx context.Context, schoolID int64, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, schoolID, id int64, in PostInput) (*Post, error)
	DeletePost(ctx context.Context, schoolID, id int64) error
}

// StaffRepository is the data access entry point for staff records.
type StaffRepository interface {
	// GetStaffBySchool returns the public staff of a school in display order.
	GetStaffBySchool(ctx context.Context, schoolID int64) []Staff

	CreateStaff(ctx context.Context, schoolID int64, in StaffInput) (*Staff, error)
	UpdateStaff(ctx context.Context, schoolID, id int64, in StaffInput) (*Staff, error)
	DeleteStaff(ctx context.Context, schoolID, id int64) error
}
