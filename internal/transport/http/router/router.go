package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/metrics"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/handlers"
	mw "github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/middleware"
)

// Deps are the handlers mounted by New. Bookmarks and Auth may be nil when
// no database is configured; the bookmark routes are then not mounted.
type Deps struct {
	Explore   *handlers.ExploreHandler
	Status    *handlers.StatusHandler
	Health    *handlers.HealthHandler
	Bookmarks *handlers.BookmarksHandler
	Auth      *mw.AuthMiddleware
}

func New(d Deps, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.AccessLog)
	r.Use(mw.Metrics)

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/explore/v1", func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
		}

		r.Get("/events/upcoming", d.Explore.Upcoming)
		r.Get("/events/nearby", d.Explore.Nearby)
		r.Get("/events/today", d.Explore.Today)
		r.Get("/events/window", d.Explore.Window)
		r.Get("/events/past", d.Explore.Past)
		r.Get("/events/map", d.Explore.Map)
		r.Get("/events/details", d.Explore.Details)
		r.Get("/search", d.Explore.Search)
		r.Get("/movies", d.Explore.Movies)
		r.Get("/lists", d.Explore.Lists)
		r.Get("/categories", d.Explore.Categories)
		r.Get("/locations", d.Explore.Locations)
		r.Get("/feeds/status", d.Status.Feeds)

		if d.Bookmarks != nil && d.Auth != nil {
			r.Group(func(r chi.Router) {
				r.Use(d.Auth.Require)
				r.Get("/bookmarks", d.Bookmarks.List)
				r.Post("/bookmarks", d.Bookmarks.Add)
				r.Delete("/bookmarks/{event_id}", d.Bookmarks.Remove)
			})
		}
	})

	return r
}
