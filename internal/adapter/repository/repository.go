// Package repository is the data access façade. Callers get the same
// operations whether records come from the remote backend or from the
// in-memory fixture store; the source is chosen once at startup.
package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/adapter/repository/fixture"
	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/pkg/credentials"
)

const (
	SourceRemote  = "remote"
	SourceFixture = "fixture"
)

// ErrBackendUnavailable is returned by writes when a backend is configured
// but no client could be built.
var ErrBackendUnavailable = errors.New("remote backend unavailable")

// ErrRemotePanic wraps a panic raised inside the remote client.
var ErrRemotePanic = errors.New("remote client panicked")

// ClientProvider hands out the shared remote client, or nil.
type ClientProvider interface {
	Client(ctx context.Context) domain.RemoteClient
}

// SchoolSource is a strategy for reading the school catalog.
type SchoolSource interface {
	ListSchools(ctx context.Context) ([]domain.Tenant, error)
}

// PostSource is a strategy for post storage.
type PostSource interface {
	ListPosts(ctx context.Context, schoolID int64) ([]domain.Post, error)
	FindPost(ctx context.Context, schoolID int64, slug string) (*domain.Post, error)
	CreatePost(ctx context.Context, schoolID int64, in domain.PostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, schoolID, id int64, in domain.PostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, schoolID, id int64) error
}

// StaffSource is a strategy for staff storage.
type StaffSource interface {
	ListStaff(ctx context.Context, schoolID int64) ([]domain.Staff, error)
	CreateStaff(ctx context.Context, schoolID int64, in domain.StaffInput) (*domain.Staff, error)
	UpdateStaff(ctx context.Context, schoolID, id int64, in domain.StaffInput) (*domain.Staff, error)
	DeleteStaff(ctx context.Context, schoolID, id int64) error
}

// Repositories bundles the façades of every entity.
type Repositories struct {
	Source  string
	Schools *Schools
	Posts   *Posts
	Staff   *Staff
}

// New selects the data source once: the remote backend when credentials are
// configured, the fixture store otherwise. A backend that is configured but
// fails never falls back to fixture data.
func New(creds credentials.Source, clients ClientProvider, store *fixture.Store, queryTimeout time.Duration, logger *slog.Logger, m *metrics.SiteMetrics) *Repositories {
	logger = logger.With("component", "repository")

	if creds.HasBackendCredentials() {
		src := NewRemoteSource(clients, queryTimeout)
		logger.Info("data source selected", "source", SourceRemote)
		return newRepositories(SourceRemote, src, src, src, logger, m)
	}

	logger.Info("data source selected", "source", SourceFixture, "note", "writes are kept in memory only")
	return newRepositories(SourceFixture, store, store, store, logger, m)
}

func newRepositories(source string, schools SchoolSource, posts PostSource, staff StaffSource, logger *slog.Logger, m *metrics.SiteMetrics) *Repositories {
	base := facade{source: source, logger: logger, metrics: m}
	return &Repositories{
		Source:  source,
		Schools: &Schools{facade: base.forEntity(domain.EntitySchools.Name), src: schools},
		Posts:   &Posts{facade: base.forEntity(domain.EntityPosts.Name), src: posts},
		Staff:   &Staff{facade: base.forEntity(domain.EntityStaff.Name), src: staff},
	}
}

// facade holds the shared logging and metrics of one entity's façade.
type facade struct {
	entity  string
	source  string
	logger  *slog.Logger
	metrics *metrics.SiteMetrics
}

func (f facade) forEntity(entity string) facade {
	f.entity = entity
	f.logger = f.logger.With("entity", entity)
	return f
}

func (f facade) ok() {
	f.metrics.RepositoryCall(f.entity, f.source, "ok")
}

// readFailed logs a read error that is about to become an empty result.
func (f facade) readFailed(op string, schoolID int64, err error) {
	outcome := "error"
	if errors.Is(err, ErrBackendUnavailable) {
		outcome = "unavailable"
	}
	f.metrics.RepositoryCall(f.entity, f.source, outcome)
	f.logger.Error("read failed, serving empty result", "op", op, "school_id", schoolID, "source", f.source, "error", err)
}

func (f facade) writeFailed(op string, schoolID int64, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		f.metrics.RepositoryCall(f.entity, f.source, "ok")
		return err
	}
	outcome := "error"
	if errors.Is(err, ErrBackendUnavailable) {
		outcome = "unavailable"
	}
	f.metrics.RepositoryCall(f.entity, f.source, outcome)
	f.logger.Error("write failed", "op", op, "school_id", schoolID, "source", f.source, "error", err)
	return err
}

func (f facade) dropped(schoolID int64, n int) {
	if n == 0 {
		return
	}
	f.metrics.ForeignDropped(f.entity, n)
	f.logger.Error("dropped records belonging to another school", "school_id", schoolID, "count", n)
}
