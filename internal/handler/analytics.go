package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Brianleach11/popreel/internal/middleware"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/service"
)

type AnalyticsHandler struct {
	svc      *service.AnalyticsService
	sessions *service.SessionTracker
}

func NewAnalyticsHandler(svc *service.AnalyticsService, sessions *service.SessionTracker) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, sessions: sessions}
}

// SubmitBatch handles POST /api/analytics/batch
func (h *AnalyticsHandler) SubmitBatch(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req model.BatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	resp, err := h.svc.ProcessBatch(c.Context(), userID, req.Events)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_EVENTS", "No valid events provided")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process events")
	}

	Metrics.EventsScored.Add(float64(resp.Accepted))
	Metrics.EventsRejected.Add(float64(resp.Rejected))

	return c.JSON(resp)
}

// sessionRequest is the body shared by the session lifecycle endpoints.
type sessionRequest struct {
	VideoID string `json:"videoId"`
	Action  string `json:"action,omitempty"`
}

// StartSession handles POST /api/analytics/session/start
func (h *AnalyticsHandler) StartSession(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req sessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.sessions.StartView(userID, videoID)
	return c.JSON(fiber.Map{"success": true})
}

// TrackSession handles POST /api/analytics/session/track
func (h *AnalyticsHandler) TrackSession(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req sessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.sessions.Track(userID, videoID, req.Action)
	return c.JSON(fiber.Map{"success": true})
}

// FinishSession handles POST /api/analytics/session/finish
// Finalizing an unknown or already-finalized session is a successful no-op.
func (h *AnalyticsHandler) FinishSession(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req sessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.sessions.FinalizeView(c.Context(), userID, videoID)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_EVENTS", "Session produced no valid event")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to finalize session")
	}

	Metrics.EventsScored.Add(float64(resp.Accepted))
	return c.JSON(resp)
}
