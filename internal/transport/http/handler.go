// Package http provides HTTP handlers for the evaluator.
package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/hub"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	svc *service.Service
	hub *hub.Hub
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, h *hub.Hub) *Handler {
	return &Handler{svc: svc, hub: h}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/evaluations", h.StartEvaluation)
	e.GET("/v1/evaluations/:run_id", h.GetRun)
	e.POST("/v1/evaluations/:run_id/cancel", h.CancelRun)
	e.GET("/v1/evaluations/:run_id/events", h.GetRunEvents)
	e.GET("/v1/evaluations/:run_id/report", h.GetReport)
	e.GET("/v1/evaluations/:run_id/stream", h.StreamRunEvents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// StartEvaluation accepts an evaluation request and launches a run.
// POST /v1/evaluations
func (h *Handler) StartEvaluation(c echo.Context) error {
	var req domain.EvaluationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if ok, reason := service.ValidateRequest(&req); !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": reason})
	}

	resp, err := h.svc.StartEvaluation(c.Request().Context(), &req)
	if err != nil {
		var admission *service.AdmissionError
		if errors.As(err, &admission) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": admission.Error()})
		}
		log.Printf("ERROR: failed to start evaluation: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to start evaluation"})
	}

	return c.JSON(http.StatusAccepted, resp)
}

// GetRun returns the state of a run.
// GET /v1/evaluations/:run_id
func (h *Handler) GetRun(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("run_id")

	run, err := h.svc.GetRun(ctx, runID)
	if err != nil {
		log.Printf("ERROR: failed to get run: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get run"})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}

	return c.JSON(http.StatusOK, run)
}

// CancelRun cancels an in-flight run.
// POST /v1/evaluations/:run_id/cancel
func (h *Handler) CancelRun(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("run_id")

	if err := h.svc.CancelRun(ctx, runID); err != nil {
		if err.Error() == "run not found" {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
		}
		log.Printf("ERROR: failed to cancel run: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to cancel run"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// GetRunEvents returns progress events for a run.
// GET /v1/evaluations/:run_id/events
func (h *Handler) GetRunEvents(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("run_id")

	afterTs, _ := strconv.ParseInt(c.QueryParam("after_ts"), 10, 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 100
	}

	run, err := h.svc.GetRun(ctx, runID)
	if err != nil {
		log.Printf("ERROR: failed to get run: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get run"})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}

	events, err := h.svc.GetEvents(ctx, runID, afterTs, limit+1)
	if err != nil {
		log.Printf("ERROR: failed to get events: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get events"})
	}

	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events":   events,
		"has_more": hasMore,
	})
}

// GetReport returns the final report for a completed run.
// GET /v1/evaluations/:run_id/report
func (h *Handler) GetReport(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("run_id")

	run, err := h.svc.GetRun(ctx, runID)
	if err != nil {
		log.Printf("ERROR: failed to get run: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get run"})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}

	report, err := h.svc.GetReport(ctx, runID)
	if err != nil {
		log.Printf("ERROR: failed to get report: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
	}
	if report == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error":  "report not available",
			"status": string(run.Status),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"report":  report,
		"summary": report.Summary(),
	})
}
