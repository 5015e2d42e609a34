package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalstar-go-api/internal/service"
	"github.com/noah-isme/evalstar-go-api/internal/utils"
)

// ActivityHandler lists the authenticated student's activity.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register binds the activity route.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	studentID, err := requireStudentID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.ListForStudent(withRequestContext(c), studentID, limit)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return utils.OK(c, items, "activity retrieved", fiber.Map{"count": len(items)})
}
