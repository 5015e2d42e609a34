package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/repository"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	StudentID uint
	GroupID   uint
	Action    string
	TaskID    *uint
	Metadata  map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist a student's activity.
type ActivityService interface {
	ActivityRecorder
	ListForStudent(ctx context.Context, studentID uint, limit int) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("action is required")
	}
	if entry.StudentID == 0 {
		return dto.ActivityResponse{}, fmt.Errorf("student is required")
	}

	model := models.ActivityLog{
		StudentID: entry.StudentID,
		GroupID:   entry.GroupID,
		Action:    strings.ToLower(strings.TrimSpace(entry.Action)),
		TaskID:    entry.TaskID,
		Metadata:  sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) ListForStudent(ctx context.Context, studentID uint, limit int) ([]dto.ActivityResponse, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	entries, err := s.repo.List(ctx, repository.ActivityLogFilter{StudentID: &studentID, Limit: limit})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}
	return responses, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
