package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalstar-go-api/internal/service"
	"github.com/noah-isme/evalstar-go-api/internal/utils"
)

// RankingHandler exposes the class ranking.
type RankingHandler struct {
	service service.RankingService
	logger  zerolog.Logger
}

// NewRankingHandler constructs a ranking handler.
func NewRankingHandler(service service.RankingService, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register binds the ranking route.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("/ranking", h.ranking)
}

func (h *RankingHandler) ranking(c *fiber.Ctx) error {
	studentID, err := requireStudentID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	result, err := h.service.ClassRanking(withRequestContext(c), studentID)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if result.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}

	return utils.SendSuccess(c, "ranking retrieved", result)
}
