package subject

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

// Handler exposes the subject agent over HTTP.
type Handler struct {
	agent *Agent
}

// NewHandler creates a new handler.
func NewHandler(agent *Agent) *Handler {
	return &Handler{agent: agent}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/profile", h.GetProfile)
	e.POST("/messages", h.PostMessage)
	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// GetProfile returns the subject's metadata, including its persona.
// GET /profile
func (h *Handler) GetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.SubjectProfile{
		PersonaDescription: h.agent.Persona(),
	})
}

// PostMessage answers one conversation message.
// POST /messages
func (h *Handler) PostMessage(c echo.Context) error {
	var req domain.SubjectMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	answer, contextID, err := h.agent.Answer(c.Request().Context(), req.ContextID, req.Message)
	if err != nil {
		log.Printf("ERROR: failed to answer message: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, domain.SubjectMessageResponse{
		Response:  answer,
		ContextID: contextID,
	})
}
