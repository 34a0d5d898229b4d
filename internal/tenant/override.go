//go:build !production

package tenant

// developerOverride pins the active tenant regardless of the request host.
// It is guarded by the owning Resolver's lock.
type developerOverride struct {
	allowed  bool
	active   bool
	tenantID *int64
}

func newDeveloperOverride(allowed bool) *developerOverride {
	return &developerOverride{allowed: allowed}
}

func (o *developerOverride) enabled() bool {
	return o.allowed
}

func (o *developerOverride) set(id *int64) error {
	if !o.allowed {
		return ErrDeveloperModeDisabled
	}
	o.active = true
	o.tenantID = nil
	if id != nil {
		v := *id
		o.tenantID = &v
	}
	return nil
}

func (o *developerOverride) clear() error {
	if !o.allowed {
		return ErrDeveloperModeDisabled
	}
	o.active = false
	o.tenantID = nil
	return nil
}

// current reports the pinned tenant id (nil for platform mode) and whether
// an override is in effect.
func (o *developerOverride) current() (*int64, bool) {
	return o.tenantID, o.active
}
