package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/middleware"
	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/observability"
	"github.com/noah-isme/evalstar-go-api/internal/repository"
	"github.com/noah-isme/evalstar-go-api/internal/scoring"
)

// ErrTransactionFailed indicates the submission could not be persisted and nothing was written.
var ErrTransactionFailed = errors.New("submission transaction failed")

// RankingInvalidator drops cached rankings after scores change.
type RankingInvalidator interface {
	Invalidate(ctx context.Context, groupID uint) error
}

// SubmissionService grades and persists task submissions.
type SubmissionService interface {
	Submit(ctx context.Context, studentID, taskID uint, req dto.SubmitTaskRequest) (dto.SubmissionResultResponse, error)
}

// SubmissionDependencies groups the collaborators of the submission service.
type SubmissionDependencies struct {
	Students     repository.StudentRepository
	Tasks        repository.TaskRepository
	StudentTasks repository.StudentTaskRepository
	Submissions  repository.SubmissionRepository
	Ranking      RankingInvalidator
	Activity     ActivityRecorder
	Events       CompletionPublisher
}

type submissionService struct {
	deps      SubmissionDependencies
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSubmissionService constructs the submission service. Ranking, Activity and Events are optional.
func NewSubmissionService(deps SubmissionDependencies, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		deps:      deps,
		validator: validate,
		logger:    logger.With().Str("component", "submission_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/evalstar-go-api/internal/service/submission"),
		now:       time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, studentID, taskID uint, req dto.SubmitTaskRequest) (dto.SubmissionResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("task.id", int64(taskID)),
		attribute.Int("answers.count", len(req.AnswerIDs)),
	))
	defer span.End()

	result, err := s.submit(ctx, studentID, taskID, req)
	outcome := submissionOutcome(err)
	observability.Submissions().WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("submission.outcome", outcome))
	if err != nil {
		if outcome == "failed" {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission_failed")
		}
		return dto.SubmissionResultResponse{}, err
	}

	return result, nil
}

func (s *submissionService) submit(ctx context.Context, studentID, taskID uint, req dto.SubmitTaskRequest) (dto.SubmissionResultResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	student, err := loadStudent(ctx, s.deps.Students, studentID)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	task, err := loadTask(ctx, s.deps.Tasks, taskID)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	record, err := findCompletion(ctx, s.deps.StudentTasks, studentID, taskID)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	now := s.now().UTC()
	if err := scoring.CheckSubmittable(student, task, record, now); err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	if suspicious := scoring.AuditCorrectAnswers(task); len(suspicious) > 0 {
		s.logger.Warn().
			Uint("task_id", task.ID).
			Interface("question_ids", suspicious).
			Msg("questions without exactly one correct answer")
	}

	grade, err := scoring.Grade(task, req.AnswerIDs)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	percentage := grade.Percentage()
	stars := scoring.AwardStars(percentage, task.MaxStars)

	answers := make([]models.StudentAnswer, 0, len(grade.Results))
	for _, item := range grade.Results {
		answers = append(answers, models.StudentAnswer{
			StudentID:  studentID,
			QuestionID: item.QuestionID,
			AnswerID:   item.AnswerID,
			IsCorrect:  item.IsCorrect,
			CreatedAt:  now,
		})
	}

	completed, err := s.deps.Submissions.Complete(ctx, repository.Completion{
		StudentID:   studentID,
		TaskID:      taskID,
		StarsEarned: stars,
		CompletedAt: now,
		Answers:     answers,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPersistenceConflict) {
			return dto.SubmissionResultResponse{}, fmt.Errorf("%w: %w", scoring.ErrTaskAlreadyCompleted, err)
		}
		if errors.Is(err, scoring.ErrTaskExpired) || errors.Is(err, scoring.ErrTaskNotFound) {
			return dto.SubmissionResultResponse{}, err
		}
		s.logger.Error().Err(err).Uint("student_id", studentID).Uint("task_id", taskID).Msg("submission transaction rolled back")
		return dto.SubmissionResultResponse{}, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	observability.StarsAwarded().WithLabelValues(strconv.Itoa(task.MaxStars)).Observe(float64(stars))

	completionDate := now
	if completed.CompletionDate != nil {
		completionDate = *completed.CompletionDate
	}

	totalStars := student.TotalStars + stars
	if refreshed, err := s.deps.Students.GetByID(ctx, studentID); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to reload student after submission")
	} else {
		totalStars = refreshed.TotalStars
	}

	s.afterCommit(ctx, student, task, stars, percentage, completionDate)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("task_id", taskID).
		Int("stars", stars).
		Int("correct", grade.CorrectCount).
		Int("total", grade.TotalQuestions).
		Msg("task completed")

	return dto.SubmissionResultResponse{
		TaskID:         taskID,
		Status:         dto.TaskStatusCompleted,
		StarsEarned:    stars,
		MaxStars:       task.MaxStars,
		CorrectCount:   grade.CorrectCount,
		TotalQuestions: grade.TotalQuestions,
		Percentage:     percentage,
		CompletionDate: completionDate,
		TotalStars:     totalStars,
	}, nil
}

// afterCommit runs the side effects of a committed submission. Failures are logged only.
func (s *submissionService) afterCommit(ctx context.Context, student models.Student, task models.Task, stars int, percentage float64, completedAt time.Time) {
	correlationID := middleware.CorrelationIDFromContext(ctx)

	if s.deps.Ranking != nil {
		if err := s.deps.Ranking.Invalidate(ctx, student.GroupID); err != nil {
			s.logger.Warn().Err(err).Uint("group_id", student.GroupID).Msg("failed to invalidate ranking cache")
		}
	}

	if s.deps.Activity != nil {
		taskID := task.ID
		metadata := map[string]interface{}{
			"task_title": task.Title,
			"stars":      stars,
			"max_stars":  task.MaxStars,
			"percentage": percentage,
		}
		if correlationID != "" {
			metadata["correlation_id"] = correlationID
		}
		if _, err := s.deps.Activity.Record(ctx, ActivityEntry{
			StudentID: student.ID,
			GroupID:   student.GroupID,
			Action:    models.ActivityTaskCompleted,
			TaskID:    &taskID,
			Metadata:  metadata,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record completion activity")
		}
	}

	if s.deps.Events != nil {
		if err := s.deps.Events.PublishCompleted(ctx, dto.TaskCompletedEvent{
			StudentID:     student.ID,
			GroupID:       student.GroupID,
			TaskID:        task.ID,
			StarsEarned:   stars,
			CompletedAt:   completedAt,
			CorrelationID: correlationID,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish task completion")
		}
	}
}

func submissionOutcome(err error) string {
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, scoring.ErrTaskAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, scoring.ErrTaskExpired):
		return "expired"
	case errors.Is(err, scoring.ErrTaskNotFound), errors.Is(err, ErrStudentNotFound):
		return "not_found"
	case errors.Is(err, scoring.ErrIncompleteSubmission),
		errors.Is(err, scoring.ErrInvalidAnswer),
		errors.Is(err, scoring.ErrTaskMisconfigured),
		errors.As(err, &validationErrs):
		return "rejected"
	default:
		return "failed"
	}
}
