package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/service"
	"github.com/noah-isme/evalstar-go-api/internal/utils"
)

// StudentTaskHandler serves the student's task list, task details and submissions.
type StudentTaskHandler struct {
	tasks       service.StudentTaskService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewStudentTaskHandler builds a student task handler instance.
func NewStudentTaskHandler(tasks service.StudentTaskService, submissions service.SubmissionService, logger zerolog.Logger) *StudentTaskHandler {
	return &StudentTaskHandler{
		tasks:       tasks,
		submissions: submissions,
		logger:      logger.With().Str("component", "student_task_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. submitGuards run before the submit handler.
func (h *StudentTaskHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	router.Get("/tasks", h.list)
	router.Get("/tasks/:id", h.detail)

	submit := append(append([]fiber.Handler{}, submitGuards...), h.submit)
	router.Post("/tasks/:id/submit", submit...)
}

func (h *StudentTaskHandler) list(c *fiber.Ctx) error {
	studentID, err := requireStudentID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	result, err := h.tasks.ListTasks(withRequestContext(c), studentID)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", result)
}

func (h *StudentTaskHandler) detail(c *fiber.Ctx) error {
	studentID, err := requireStudentID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.tasks.GetTaskDetails(withRequestContext(c), studentID, taskID)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "task retrieved", result)
}

func (h *StudentTaskHandler) submit(c *fiber.Ctx) error {
	studentID, err := requireStudentID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitTaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.submissions.Submit(withRequestContext(c), studentID, taskID, payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("student_id", studentID).
		Uint("task_id", taskID).
		Int("stars", result.StarsEarned).
		Msg("submission accepted")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "task submitted", result)
}
