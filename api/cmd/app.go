package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/application/bookmark"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/application/explore"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	rediscache "github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/db/postgres"
	rabbitpub "github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/upstream"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/router"
)

// sysClock implements the Clock ports using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App is the wired service: the HTTP server plus everything that must be
// released when it stops.
type App struct {
	Server *http.Server

	closers []func()
}

func (a *App) onClose(fn func()) { a.closers = append(a.closers, fn) }

// Close stops background work and releases connections in reverse setup order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewApp wires every dependency once. On error everything opened so far is
// already released.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{}
	var checkers []handlers.ReadinessChecker

	// 1) Infrastructure
	var cache upstream.Cache
	if cfg.RedisURL != "" {
		rc, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.onClose(func() { _ = rc.Close() })
		cache = rc
		checkers = append(checkers, handlers.CheckFunc{Label: "redis", Fn: rc.Ping})
		zlog.Info().Dur("ttl", cfg.CacheTTLUpstream).Msg("upstream cache enabled")
	} else {
		zlog.Warn().Msg("REDIS_URL empty: upstream responses will not be cached")
	}

	up := upstream.New(upstream.Config{
		BaseURL:  cfg.KudaGoBaseURL,
		Timeout:  cfg.UpstreamTimeout,
		CacheTTL: cfg.CacheTTLUpstream,
	}, cache)

	var rabbit *rabbitpub.Publisher
	var pub explore.EventPublisher = explore.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbit publisher: %w", err)
		}
		rabbit = p
		pub = p
		app.onClose(func() { _ = rabbit.Close() })
		checkers = append(checkers, handlers.CheckFunc{Label: "rabbitmq", Fn: rabbit.Ping})
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// 2) Application
	var opts []explore.Option
	if cache != nil && cfg.CacheTTLUpstream > 0 {
		// refresher-warmed entries stay addressable for the whole TTL
		opts = append(opts, explore.WithAnchorStep(cfg.CacheTTLUpstream))
	}
	svc := explore.New(up, sysClock{}, domain.Language(cfg.DefaultLang), cfg.DefaultLocation, opts...)

	store := explore.NewFeedStore()
	bgCtx, stopBg := context.WithCancel(context.Background())
	app.onClose(stopBg)
	go explore.PublishRefreshes(bgCtx, store, pub, sysClock{})

	if cfg.RefreshCron != "" {
		ref := explore.NewRefresher(svc, store, sysClock{}, cfg.RefreshLocations, cfg.UpstreamTimeout*4)
		if err := ref.Start(cfg.RefreshCron); err != nil {
			app.Close()
			return nil, err
		}
		app.onClose(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			ref.Stop(ctx)
		})
	}

	// 3) Transport
	deps := router.Deps{
		Explore: handlers.NewExploreHandler(svc),
		Status:  handlers.NewStatusHandler(store),
	}

	if cfg.DatabaseURL != "" {
		db, err := openDB(cfg.DatabaseURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.onClose(func() { _ = db.Close() })

		repo := postgres.NewBookmarkRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("bookmark schema: %w", err)
		}
		checkers = append(checkers, handlers.CheckFunc{Label: "postgres", Fn: repo.Ping})

		deps.Bookmarks = handlers.NewBookmarksHandler(bookmark.New(repo, svc, sysClock{}))
		deps.Auth = authmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		zlog.Warn().Msg("DATABASE_URL empty: bookmarks are disabled")
	}
	deps.Health = handlers.NewHealthHandler(checkers...)

	// 4) Server
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.New(deps, cfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return app, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}
