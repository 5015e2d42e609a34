package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the audit trail of student actions on tasks.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	StudentID uint              `gorm:"not null;index" json:"student_id"`
	GroupID   uint              `gorm:"not null;index" json:"group_id"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	TaskID    *uint             `gorm:"index" json:"task_id"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

const (
	// ActivityTaskCompleted is recorded once a submission has been committed.
	ActivityTaskCompleted = "task.completed"
)
