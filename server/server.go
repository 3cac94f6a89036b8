// Package server exposes the orchestration engine over HTTP. The surface
// is a single chat endpoint plus a health probe; everything else (auth,
// rate limiting, streaming) is out of scope.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/docuchat/docuchat/logging"
)

// Orchestrator is the engine contract the transport depends on. It is
// defined here, consumer-side, so tests can substitute a fake without
// touching the engine package.
type Orchestrator interface {
	HandleMessage(ctx context.Context, sessionID, message string) (string, error)
}

// Handler holds the route implementations.
type Handler struct {
	orchestrator Orchestrator
	logger       logging.Logger
}

// NewHandler constructs a Handler around an orchestrator.
func NewHandler(orchestrator Orchestrator, logger logging.Logger) *Handler {
	return &Handler{orchestrator: orchestrator, logger: logging.OrNoOp(logger)}
}

// New creates and configures the HTTP server.
func New(orchestrator Orchestrator, logger logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// A panic or unhandled error must never leak internals to the caller.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if code == http.StatusInternalServerError {
			logging.OrNoOp(logger).Error("unhandled server error", "error", err, "path", c.Path())
			_ = c.JSON(code, map[string]string{"error": "Internal server error"})
			return
		}
		_ = c.JSON(code, map[string]string{"error": http.StatusText(code)})
	}

	h := NewHandler(orchestrator, logger)
	h.RegisterRoutes(e)

	return e
}

// RegisterRoutes attaches the handler's routes to the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/agent/message", h.HandleMessage)
	e.GET("/health", h.Health)
}
