package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Brianleach11/popreel/internal/handler"
	"github.com/Brianleach11/popreel/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Feed      *handler.FeedHandler
	Video     *handler.VideoHandler
	Analytics *handler.AnalyticsHandler
	Stats     *handler.StatsHandler
	Health    *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(middleware.NewIdentity())
	app.Use(handler.MetricsMiddleware())

	// Health and metrics (before API group, no auth needed)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	feedLimiter := middleware.NewFeedRateLimiter()
	analyticsLimiter := middleware.NewAnalyticsRateLimiter()
	ingestLimiter := middleware.NewIngestRateLimiter()
	likeLimiter := middleware.NewLikeRateLimiter()
	statsLimiter := middleware.NewStatsRateLimiter()

	// API routes
	api := app.Group("/api")

	// Feed routes (anonymous allowed, forced to trending)
	api.Get("/feed", h.Feed.GetFeed, feedLimiter.Handler())

	// Analytics routes
	api.Post("/analytics/batch", h.Analytics.SubmitBatch, middleware.RequireUser, analyticsLimiter.Handler())
	api.Post("/analytics/session/start", h.Analytics.StartSession, middleware.RequireUser, analyticsLimiter.Handler())
	api.Post("/analytics/session/track", h.Analytics.TrackSession, middleware.RequireUser, analyticsLimiter.Handler())
	api.Post("/analytics/session/finish", h.Analytics.FinishSession, middleware.RequireUser, analyticsLimiter.Handler())

	// Video routes
	api.Post("/videos", h.Video.Ingest, middleware.RequireUser, ingestLimiter.Handler())
	api.Get("/videos/:id", h.Video.Get)
	api.Delete("/videos/:id", h.Video.Delete, middleware.RequireUser)
	api.Post("/videos/:id/like", h.Video.ToggleLike, middleware.RequireUser, likeLimiter.Handler())

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, statsLimiter.Handler())
}
