package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Brianleach11/popreel/internal/middleware"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/service"
)

type FeedHandler struct {
	svc *service.FeedService
}

func NewFeedHandler(svc *service.FeedService) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// GetFeed handles GET /api/feed?mode=&page=&pageSize=
func (h *FeedHandler) GetFeed(c fiber.Ctx) error {
	mode, err := model.ParseFeedMode(fiber.Query[string](c, "mode"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_MODE",
			"mode must be one of: personalized, trending, exploratory")
	}

	page, errMsg := middleware.ValidatePage(fiber.Query[string](c, "page"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	pageSize, errMsg := middleware.ValidatePageSize(fiber.Query[string](c, "pageSize"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	userID := middleware.UserID(c)
	if userID == "" {
		// Anonymous callers are always served the trending tier
		mode = model.ModeTrending
	}

	Metrics.FeedRequests.WithLabelValues(string(mode)).Inc()

	feed, err := h.svc.GetFeed(c.Context(), model.FeedRequest{
		UserID:   userID,
		Mode:     mode,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to assemble feed")
	}
	if feed.FellBack {
		Metrics.FeedFallbacks.Inc()
	}

	return c.JSON(feed)
}
