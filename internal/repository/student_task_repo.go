package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// StudentTaskRepository reads completion records and submitted answers.
type StudentTaskRepository interface {
	GetByStudentAndTask(ctx context.Context, studentID, taskID uint) (models.StudentTask, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentTask, error)
	ListAnswers(ctx context.Context, studentID, taskID uint) ([]models.StudentAnswer, error)
}

type studentTaskRepository struct {
	db *gorm.DB
}

// NewStudentTaskRepository constructs the completion record repository.
func NewStudentTaskRepository(db *gorm.DB) StudentTaskRepository {
	return &studentTaskRepository{db: db}
}

func (r *studentTaskRepository) GetByStudentAndTask(ctx context.Context, studentID, taskID uint) (models.StudentTask, error) {
	var record models.StudentTask
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("task_id = ?", taskID).
		First(&record).Error
	if err != nil {
		return models.StudentTask{}, err
	}

	return record, nil
}

func (r *studentTaskRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentTask, error) {
	var records []models.StudentTask
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *studentTaskRepository) ListAnswers(ctx context.Context, studentID, taskID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	err := r.db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = student_answers.question_id").
		Where("student_answers.student_id = ?", studentID).
		Where("questions.task_id = ?", taskID).
		Order("student_answers.id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}

	return answers, nil
}
