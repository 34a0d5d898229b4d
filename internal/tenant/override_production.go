//go:build production

package tenant

// developerOverride is compiled out of production builds.
type developerOverride struct{}

func newDeveloperOverride(bool) *developerOverride {
	return &developerOverride{}
}

func (*developerOverride) enabled() bool { return false }

func (*developerOverride) set(*int64) error { return ErrDeveloperModeDisabled }

func (*developerOverride) clear() error { return ErrDeveloperModeDisabled }

func (*developerOverride) current() (*int64, bool) { return nil, false }
