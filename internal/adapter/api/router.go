package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/V4T54L/schoolsite/internal/adapter/api/handler"
	"github.com/V4T54L/schoolsite/internal/adapter/api/middleware"
	"github.com/V4T54L/schoolsite/internal/pkg/config"
)

// Preview is the developer preview as seen from HTTP: read-only state plus
// host tracking. Pinning a school is not reachable over the network.
type Preview interface {
	handler.Preview
	middleware.HostTracker
}

// Deps are the collaborators of the HTTP surface. Preview and Events are
// only used when developer mode is enabled.
type Deps struct {
	Resolver middleware.ContextResolver
	Site     handler.SiteContent
	Admin    handler.AdminContent
	Preview  Preview
	Events   http.Handler
	Source   string
}

// NewRouter creates and configures the HTTP router of the site service.
func NewRouter(cfg *config.Config, logger *slog.Logger, deps Deps, devMode bool) http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logging(logger),
		chimw.Recoverer,
	)

	siteHandler := handler.NewSiteHandler(deps.Site, deps.Source, logger)
	r.Get("/health", siteHandler.HealthCheck)

	preview := devMode && deps.Preview != nil

	r.Group(func(r chi.Router) {
		r.Use(middleware.Tenant(deps.Resolver, cfg.TrustForwardedHost))
		if preview {
			r.Use(middleware.TrackHost(deps.Preview, cfg.TrustForwardedHost))
		}

		r.Get("/api/site", siteHandler.GetSite)
		r.Get("/api/posts", siteHandler.ListPosts)
		r.Get("/api/posts/{slug}", siteHandler.GetPost)
		r.Get("/api/staff", siteHandler.ListStaff)

		adminHandler := handler.NewAdminHandler(deps.Admin, logger)
		limiter := rate.NewLimiter(rate.Limit(cfg.AdminRateLimit), cfg.AdminRateBurst)
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(
				middleware.AdminKey(cfg.AdminAPIKey, logger),
				middleware.RateLimit(limiter, logger),
			)
			r.Post("/staff", adminHandler.CreateStaff)
			r.Put("/staff/{id}", adminHandler.UpdateStaff)
			r.Delete("/staff/{id}", adminHandler.DeleteStaff)
			r.Post("/posts", adminHandler.CreatePost)
			r.Put("/posts/{id}", adminHandler.UpdatePost)
			r.Delete("/posts/{id}", adminHandler.DeletePost)
		})
	})

	if preview {
		devHandler := handler.NewDevHandler(deps.Preview, logger)
		r.Route("/dev", func(r chi.Router) {
			r.Use(
				middleware.LoopbackOnly(logger),
				middleware.TrackHost(deps.Preview, cfg.TrustForwardedHost),
			)
			r.Get("/tenants", devHandler.ListTenants)
			r.Get("/context", devHandler.GetContext)
			if deps.Events != nil {
				r.Get("/context/events", deps.Events.ServeHTTP)
			}
		})
		logger.Warn("developer routes mounted", "prefix", "/dev")
	}

	return r
}
