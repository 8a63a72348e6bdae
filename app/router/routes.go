// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/amirphl/counter-api/app/dto"
	"github.com/amirphl/counter-api/app/handlers"
	"github.com/amirphl/counter-api/app/middleware"
	"github.com/amirphl/counter-api/config"
	_ "github.com/amirphl/counter-api/docs"
	"github.com/amirphl/counter-api/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

const apiVersion = "1.0.0"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app          *fiber.App
	cfg          *config.Config
	log          zerolog.Logger
	countHandler handlers.CountHandlerInterface
	health       HealthChecker
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.Config, log zerolog.Logger, countHandler handlers.CountHandlerInterface, health HealthChecker) Router {
	r := &FiberRouter{
		cfg:          cfg,
		log:          log.With().Str("component", "router").Logger(),
		countHandler: countHandler,
		health:       health,
	}

	r.app = fiber.New(fiber.Config{
		AppName:      "Counter API",
		ServerHeader: "counter-api",
		ErrorHandler: r.errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	r.app.Get("/", r.welcome)
	r.app.Get("/health", r.healthCheck)
	r.app.Get("/ready", r.readinessCheck)

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}
	if r.cfg.Server.EnableDocs {
		r.app.Get("/swagger.json", r.serveSwaggerJSON)
	}

	// Latest-count API
	api := r.app.Group("/api/count")
	api.Get("", r.countHandler.GetLatest)
	api.Post("/increment", r.countHandler.IncrementLatest)

	// CRUD over count_table; /export must precede /:id
	counts := r.app.Group("/counts")
	counts.Get("/export", r.countHandler.Export)
	counts.Post("", r.countHandler.Create)
	counts.Get("", r.countHandler.List)
	counts.Get("/:id", r.countHandler.Get)
	counts.Put("/:id", r.countHandler.Update)
	counts.Delete("/:id", r.countHandler.Delete)
	counts.Post("/:id/increment", r.countHandler.Increment)

	// 404 handler for undefined routes
	r.app.Use(r.notFoundHandler)

	r.log.Info().Msg("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: fiber.HeaderXRequestID,
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.log.Error().
				Str("request_id", requestid.FromContext(c)).
				Str("event", "panic").
				Interface("error", e).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("ip", c.IP()).
				Msg("recovered from panic")
		},
	}))

	r.app.Use(middleware.AccessLog(r.log, "/health", r.cfg.Metrics.Path))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Empty AllowHeaders reflects the headers requested in the preflight
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.CORS.AllowedOrigins,
		AllowMethods: []string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch,
			fiber.MethodDelete, fiber.MethodHead, fiber.MethodOptions,
		},
		ExposeHeaders: []string{
			fiber.HeaderXRequestID,
			fiber.HeaderContentDisposition,
		},
		AllowCredentials: r.cfg.CORS.AllowCredentials,
		MaxAge:           utils.CORSMaxAge,
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.log.Info().Str("address", address).Msg("Starting server")
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// welcome lists the available endpoints
func (r *FiberRouter) welcome(c fiber.Ctx) error {
	return c.JSON(dto.WelcomeResponse{
		Message: "Welcome to the Counter API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"get_count":             "GET /api/count",
			"increment_count":       "POST /api/count/increment",
			"list_counts":           "GET /counts/",
			"create_count":          "POST /counts/",
			"get_count_by_id":       "GET /counts/{id}",
			"update_count":          "PUT /counts/{id}",
			"delete_count":          "DELETE /counts/{id}",
			"increment_count_by_id": "POST /counts/{id}/increment",
			"export_counts":         "GET /counts/export",
			"health":                "GET /health",
			"ready":                 "GET /ready",
		},
	})
}

// healthCheck reports liveness without touching the store
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "healthy"})
}

// readinessCheck pings the store
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.ReadinessResponse
// @Failure 503 {object} dto.ReadinessResponse
// @Router /ready [get]
func (r *FiberRouter) readinessCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.health.Ping(ctx); err != nil {
		r.log.Warn().Err(err).Msg("readiness check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ReadinessResponse{
			Status:   "unavailable",
			Database: err.Error(),
		})
	}
	return c.JSON(dto.ReadinessResponse{Status: "ready", Database: "ok"})
}

// serveSwaggerJSON serves the registered OpenAPI document
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// Global error handler
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			message = fe.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	requestID := requestid.FromContext(c)
	r.log.Error().
		Err(err).
		Int("status", code).
		Str("request_id", requestID).
		Str("path", c.Path()).
		Msg("request failed")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}
