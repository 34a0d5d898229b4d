package usecase

import (
	"context"
	"log/slog"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// ContextResolver resolves the tenant context of a request host.
type ContextResolver interface {
	ContextFor(host string) domain.ResolutionContext
}

// SiteContentUseCase serves the public content of whichever school a
// request resolves to. Platform mode has no content of its own.
type SiteContentUseCase struct {
	resolver ContextResolver
	posts    domain.PostRepository
	staff    domain.StaffRepository
	logger   *slog.Logger
}

// NewSiteContentUseCase creates a new SiteContentUseCase.
func NewSiteContentUseCase(resolver ContextResolver, posts domain.PostRepository, staff domain.StaffRepository, logger *slog.Logger) *SiteContentUseCase {
	return &SiteContentUseCase{
		resolver: resolver,
		posts:    posts,
		staff:    staff,
		logger:   logger,
	}
}

// Context resolves the tenant for host.
func (uc *SiteContentUseCase) Context(host string) domain.ResolutionContext {
	return uc.resolver.ContextFor(host)
}

// Posts returns the published posts of the active school.
func (uc *SiteContentUseCase) Posts(ctx context.Context, rc domain.ResolutionContext) []domain.Post {
	if rc.IsPlatformMode {
		return []domain.Post{}
	}
	return uc.posts.GetPostsBySchool(ctx, rc.TenantID())
}

// Post returns one published post of the active school.
func (uc *SiteContentUseCase) Post(ctx context.Context, rc domain.ResolutionContext, slug string) (*domain.Post, error) {
	if rc.IsPlatformMode {
		return nil, domain.ErrNotFound
	}
	return uc.posts.GetPostBySlug(ctx, rc.TenantID(), slug)
}

// Staff returns the public staff of the active school.
func (uc *SiteContentUseCase) Staff(ctx context.Context, rc domain.ResolutionContext) []domain.Staff {
	if rc.IsPlatformMode {
		return []domain.Staff{}
	}
	return uc.staff.GetStaffBySchool(ctx, rc.TenantID())
}
