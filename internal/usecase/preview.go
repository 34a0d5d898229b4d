package usecase

import (
	"github.com/V4T54L/schoolsite/internal/domain"
)

// PreviewController is the developer override surface of the tenant resolver.
type PreviewController interface {
	DeveloperModeEnabled() bool
	SetDeveloperOverride(id *int64) error
	ClearDeveloperOverride() error
	ActiveContext() domain.ResolutionContext
	SetHost(host string)
	Subscribe(fn func(domain.ResolutionContext)) func()
}

// TenantLister lists the schools known to the resolver.
type TenantLister interface {
	Tenants() []domain.Tenant
}

// PreviewUseCase lets a developer view any school from any host.
type PreviewUseCase struct {
	ctl     PreviewController
	tenants TenantLister
}

// NewPreviewUseCase creates a new PreviewUseCase.
func NewPreviewUseCase(ctl PreviewController, tenants TenantLister) *PreviewUseCase {
	return &PreviewUseCase{ctl: ctl, tenants: tenants}
}

func (uc *PreviewUseCase) Enabled() bool {
	return uc.ctl.DeveloperModeEnabled()
}

func (uc *PreviewUseCase) Tenants() []domain.Tenant {
	return uc.tenants.Tenants()
}

// Pin overrides the active school; a nil id previews platform mode.
func (uc *PreviewUseCase) Pin(id *int64) (domain.ResolutionContext, error) {
	if err := uc.ctl.SetDeveloperOverride(id); err != nil {
		return domain.ResolutionContext{}, err
	}
	return uc.ctl.ActiveContext(), nil
}

func (uc *PreviewUseCase) Unpin() (domain.ResolutionContext, error) {
	if err := uc.ctl.ClearDeveloperOverride(); err != nil {
		return domain.ResolutionContext{}, err
	}
	return uc.ctl.ActiveContext(), nil
}

// Follow points the preview session at host. The active context follows
// it unless an override is pinned.
func (uc *PreviewUseCase) Follow(host string) {
	uc.ctl.SetHost(host)
}

func (uc *PreviewUseCase) Current() domain.ResolutionContext {
	return uc.ctl.ActiveContext()
}

// Watch registers fn for context changes and returns the unsubscribe func.
func (uc *PreviewUseCase) Watch(fn func(domain.ResolutionContext)) func() {
	return uc.ctl.Subscribe(fn)
}
