package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/V4T54L/schoolsite/internal/domain"
)

var (
	// ErrNoActiveTenant is returned for writes attempted in platform mode.
	ErrNoActiveTenant = errors.New("no active school")
	// ErrInvalidInput wraps validation failures of admin payloads.
	ErrInvalidInput = errors.New("invalid input")
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	reNonSlug     = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	reSeparators  = regexp.MustCompile(`[\s_]+`)
	reMultiHyphen = regexp.MustCompile(`-{2,}`)
)

const maxSlugLength = 100

// AdminContentUseCase edits the posts and staff of the active school.
type AdminContentUseCase struct {
	posts  domain.PostRepository
	staff  domain.StaffRepository
	logger *slog.Logger
}

// NewAdminContentUseCase creates a new AdminContentUseCase.
func NewAdminContentUseCase(posts domain.PostRepository, staff domain.StaffRepository, logger *slog.Logger) *AdminContentUseCase {
	return &AdminContentUseCase{
		posts:  posts,
		staff:  staff,
		logger: logger,
	}
}

func schoolOf(rc domain.ResolutionContext) (int64, error) {
	if rc.IsPlatformMode || rc.TenantID() <= 0 {
		return 0, ErrNoActiveTenant
	}
	return rc.TenantID(), nil
}

// CreateStaff adds a staff member to the active school.
func (uc *AdminContentUseCase) CreateStaff(ctx context.Context, rc domain.ResolutionContext, in domain.StaffInput) (*domain.Staff, error) {
	schoolID, err := schoolOf(rc)
	if err != nil {
		return nil, err
	}
	if err := validateStaff(&in); err != nil {
		return nil, err
	}
	st, err := uc.staff.CreateStaff(ctx, schoolID, in)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("staff created", "school_id", schoolID, "staff_id", st.ID)
	return st, nil
}

// UpdateStaff replaces a staff member of the active school.
func (uc *AdminContentUseCase) UpdateStaff(ctx context.Context, rc domain.ResolutionContext, id int64, in domain.StaffInput) (*domain.Staff, error) {
	schoolID, err := schoolOf(rc)
	if err != nil {
		return nil, err
	}
	if err := validateStaff(&in); err != nil {
		return nil, err
	}
	st, err := uc.staff.UpdateStaff(ctx, schoolID, id, in)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("staff updated", "school_id", schoolID, "staff_id", id)
	return st, nil
}

// DeleteStaff removes a staff member of the active school.
func (uc *AdminContentUseCase) DeleteStaff(ctx context.Context, rc domain.ResolutionContext, id int64) error {
	schoolID, err := schoolOf(rc)
	if err != nil {
		return err
	}
	if err := uc.staff.DeleteStaff(ctx, schoolID, id); err != nil {
		return err
	}
	uc.logger.Info("staff deleted", "school_id", schoolID, "staff_id", id)
	return nil
}

// CreatePost publishes or drafts a post for the active school. A missing
// slug is derived from the title.
func (uc *AdminContentUseCase) CreatePost(ctx context.Context, rc domain.ResolutionContext, in domain.PostInput) (*domain.Post, error) {
	schoolID, err := schoolOf(rc)
	if err != nil {
		return nil, err
	}
	if err := validatePost(&in); err != nil {
		return nil, err
	}
	post, err := uc.posts.CreatePost(ctx, schoolID, in)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("post created", "school_id", schoolID, "post_id", post.ID, "slug", post.Slug)
	return post, nil
}

// UpdatePost replaces a post of the active school.
func (uc *AdminContentUseCase) UpdatePost(ctx context.Context, rc domain.ResolutionContext, id int64, in domain.PostInput) (*domain.Post, error) {
	schoolID, err := schoolOf(rc)
	if err != nil {
		return nil, err
	}
	if err := validatePost(&in); err != nil {
		return nil, err
	}
	post, err := uc.posts.UpdatePost(ctx, schoolID, id, in)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("post updated", "school_id", schoolID, "post_id", id)
	return post, nil
}

// DeletePost removes a post of the active school.
func (uc *AdminContentUseCase) DeletePost(ctx context.Context, rc domain.ResolutionContext, id int64) error {
	schoolID, err := schoolOf(rc)
	if err != nil {
		return err
	}
	if err := uc.posts.DeletePost(ctx, schoolID, id); err != nil {
		return err
	}
	uc.logger.Info("post deleted", "school_id", schoolID, "post_id", id)
	return nil
}

func validateStaff(in *domain.StaffInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.SortOrder < 0 {
		return fmt.Errorf("%w: sort_order must not be negative", ErrInvalidInput)
	}
	return nil
}

func validatePost(in *domain.PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if !slugPattern.MatchString(in.Slug) {
		return fmt.Errorf("%w: slug must contain only lowercase letters, numbers and single hyphens", ErrInvalidInput)
	}
	if len(in.Slug) > maxSlugLength {
		return fmt.Errorf("%w: slug must not exceed %d characters", ErrInvalidInput, maxSlugLength)
	}
	return nil
}

// Slugify converts a title into a URL slug.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = reNonSlug.ReplaceAllString(text, "")
	text = reSeparators.ReplaceAllString(text, "-")
	text = reMultiHyphen.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}
