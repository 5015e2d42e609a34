package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// TaskRepository reads tasks together with their questions and group assignments.
type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (models.Task, error)
	ListByGroup(ctx context.Context, groupID uint) ([]models.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates a GORM-backed task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func orderAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Groups").
		Preload("Questions", orderQuestions).
		Preload("Questions.Answers", orderAnswers).
		First(&task, id).Error
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) ListByGroup(ctx context.Context, groupID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN task_groups ON task_groups.task_id = tasks.id").
		Where("task_groups.group_id = ?", groupID).
		Preload("Teacher").
		Preload("Questions", orderQuestions).
		Order("tasks.id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}
