package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/docuchat/docuchat/engine"
)

const validationMessage = "Both message and session_id are required"

// messageRequest is the body of POST /agent/message.
type messageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// messageResponse is the success body.
type messageResponse struct {
	Response string `json:"response"`
}

// errorResponse is the body of every non-200 answer.
type errorResponse struct {
	Error string `json:"error"`
}

// HandleMessage implements POST /agent/message. Validation failures are
// the only client errors; everything downstream of a valid request either
// succeeds or degrades inside the engine, so any error reaching this layer
// is answered with a generic 500.
func (h *Handler) HandleMessage(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage})
	}
	if req.Message == "" || req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage})
	}

	answer, err := h.orchestrator.HandleMessage(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, engine.ErrMissingInput) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage})
		}
		h.logger.Error("message handling failed", "session_id", req.SessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}

	return c.JSON(http.StatusOK, messageResponse{Response: answer})
}

// Health implements GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
