package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/mapdraw/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP. Pointer moves are posted often, so the budget is
	// higher than for a plain read API.
	app.Use(limiter.New(limiter.Config{
		Max:        deps.rateLimit(),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return websocket.IsWebSocketUpgrade(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional GETs of recomputed GeoJSON
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	rt := deps.requestTimeout()
	v1 := app.Group("/v1")
	v1.Post("/sessions", timeout.NewWithContext(CreateSessionHandler(deps), rt))
	v1.Get("/sessions", timeout.NewWithContext(ListSessionsHandler(deps), rt))
	v1.Get("/sessions/:id", timeout.NewWithContext(GetSessionHandler(deps), rt))
	v1.Delete("/sessions/:id", timeout.NewWithContext(DeleteSessionHandler(deps), rt))
	v1.Post("/sessions/:id/mode", timeout.NewWithContext(SelectModeHandler(deps), rt))
	v1.Post("/sessions/:id/cancel", timeout.NewWithContext(CancelHandler(deps), rt))
	v1.Post("/sessions/:id/finish", timeout.NewWithContext(FinishHandler(deps), rt))
	v1.Post("/sessions/:id/events", timeout.NewWithContext(PostEventHandler(deps), rt))
	v1.Get("/sessions/:id/preview", timeout.NewWithContext(PreviewHandler(deps), rt))
	v1.Get("/sessions/:id/shapes", timeout.NewWithContext(ShapesHandler(deps), rt))
	v1.Delete("/sessions/:id/shapes", timeout.NewWithContext(DeleteShapesHandler(deps), rt))
	v1.Put("/sessions/:id/shapes/:shapeID", timeout.NewWithContext(ReplaceShapeHandler(deps), rt))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.DocsPath)

	// WebSocket host bridge
	app.Use("/ws", WebSocketUpgrade(deps))
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
