package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalstar-go-api/internal/middleware"
	"github.com/noah-isme/evalstar-go-api/internal/scoring"
	"github.com/noah-isme/evalstar-go-api/internal/service"
	"github.com/noah-isme/evalstar-go-api/internal/utils"
)

var errUnauthenticated = errors.New("unauthenticated")

// withRequestContext carries the request's correlation id into service calls.
func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requireStudentID(c *fiber.Ctx) (uint, error) {
	id := userIDFromContext(c)
	if id == 0 {
		return 0, errUnauthenticated
	}
	return id, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// writeError maps domain errors onto HTTP responses.
func writeError(c *fiber.Ctx, base zerolog.Logger, err error) error {
	var (
		validationErrs validator.ValidationErrors
		incomplete     *scoring.IncompleteSubmissionError
		invalid        *scoring.InvalidAnswerError
	)

	switch {
	case errors.Is(err, errUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.As(err, &validationErrs):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrs.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, scoring.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, scoring.ErrTaskExpired):
		return utils.SendError(c, fiber.StatusForbidden, "task deadline has passed")
	case errors.Is(err, scoring.ErrTaskAlreadyCompleted):
		return utils.SendError(c, fiber.StatusConflict, "task already completed")
	case errors.As(err, &incomplete):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "all questions must be answered", fiber.Map{
			"expected": incomplete.Expected,
			"received": incomplete.Received,
		})
	case errors.Is(err, scoring.ErrIncompleteSubmission):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "all questions must be answered")
	case errors.As(err, &invalid):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid answer", fiber.Map{
			"answer_id": invalid.AnswerID,
		})
	case errors.Is(err, scoring.ErrTaskMisconfigured):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "task has no questions")
	default:
		requestLogger(base, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
