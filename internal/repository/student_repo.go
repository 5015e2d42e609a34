package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ListByGroup(ctx context.Context, groupID uint) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("Group.Level").First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// ListByGroup returns the group's roster ordered by total stars, ties by ascending id.
func (r *studentRepository) ListByGroup(ctx context.Context, groupID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("total_stars DESC, id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}
