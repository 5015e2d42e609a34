package dto

import (
	"time"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// ActivityResponse serialises an activity log entry.
type ActivityResponse struct {
	ID        uint                   `json:"id"`
	Action    string                 `json:"action"`
	TaskID    *uint                  `json:"task_id"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:        model.ID,
		Action:    model.Action,
		TaskID:    model.TaskID,
		Metadata:  metadata,
		CreatedAt: model.CreatedAt,
	}
}
