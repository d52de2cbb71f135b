package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/Brianleach11/popreel/internal/middleware"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/service"
)

type VideoHandler struct {
	ingest *service.IngestService
	videos *service.VideoService
	feed   *service.FeedService
}

func NewVideoHandler(ingest *service.IngestService, videos *service.VideoService, feed *service.FeedService) *VideoHandler {
	return &VideoHandler{ingest: ingest, videos: videos, feed: feed}
}

// Ingest handles POST /api/videos — the moderation and embedding gate.
func (h *VideoHandler) Ingest(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req model.IngestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	title, errMsg := middleware.ValidateTitle(req.Title)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Title = title
	req.Description = middleware.ValidateDescription(req.Description)

	if req.MediaRef == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "mediaRef is required")
	}
	if req.Duration <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "duration must be positive")
	}

	resp, err := h.ingest.Ingest(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, model.ErrUpstream) {
			// Record stays in processing; the client can retry
			return middleware.ErrorResponse(c, fiber.StatusBadGateway, "PROCESSING_UNAVAILABLE",
				"Video processing is temporarily unavailable, please retry")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to ingest video")
	}

	if resp.Status == model.StatusBlocked {
		Metrics.ModerationBlocks.Inc()
		// A block is a classification, reported with its reasons
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}

	return c.JSON(resp)
}

// Get handles GET /api/videos/:id
func (h *VideoHandler) Get(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	video, err := h.feed.GetVideo(c.Context(), middleware.UserID(c), videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup video")
	}

	return c.JSON(video)
}

// ToggleLike handles POST /api/videos/:id/like
func (h *VideoHandler) ToggleLike(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.videos.ToggleLike(c.Context(), middleware.UserID(c), videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to toggle like")
	}

	return c.JSON(resp)
}

// Delete handles DELETE /api/videos/:id
func (h *VideoHandler) Delete(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	err := h.videos.Delete(c.Context(), middleware.UserID(c), videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found or not owned by caller")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete video")
	}

	return c.JSON(fiber.Map{"success": true})
}
