package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/scoring"
)

// ErrPersistenceConflict indicates the (student, task) pair was completed by another writer.
var ErrPersistenceConflict = errors.New("student task already completed by a concurrent submission")

// Completion is everything written when a submission is accepted.
type Completion struct {
	StudentID   uint
	TaskID      uint
	StarsEarned int
	CompletedAt time.Time
	Answers     []models.StudentAnswer
}

// SubmissionRepository persists graded submissions atomically.
type SubmissionRepository interface {
	Complete(ctx context.Context, completion Completion) (models.StudentTask, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Complete re-checks eligibility, writes the answers, upserts the completion record and
// increments the student's stars in one transaction. Nothing is written when any step fails.
// Eligibility failures surface as the scoring errors, a completed pair as ErrPersistenceConflict.
func (r *submissionRepository) Complete(ctx context.Context, completion Completion) (models.StudentTask, error) {
	var record models.StudentTask

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := recheckSubmittable(tx, completion); err != nil {
			return err
		}

		if len(completion.Answers) > 0 {
			answers := make([]models.StudentAnswer, len(completion.Answers))
			for i, answer := range completion.Answers {
				answer.StudentID = completion.StudentID
				answers[i] = answer
			}
			if err := tx.Create(&answers).Error; err != nil {
				return translateWriteError(err)
			}
		}

		completedAt := completion.CompletedAt
		upsert := models.StudentTask{
			StudentID:      completion.StudentID,
			TaskID:         completion.TaskID,
			StarsEarned:    completion.StarsEarned,
			Completed:      true,
			CompletionDate: &completedAt,
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "task_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars_earned", "completed", "completion_date", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "student_tasks", Name: "completed"}, Value: false},
			}},
		}).Create(&upsert)
		if result.Error != nil {
			return translateWriteError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPersistenceConflict
		}

		increment := tx.Model(&models.Student{}).
			Where("id = ?", completion.StudentID).
			UpdateColumn("total_stars", gorm.Expr("total_stars + ?", completion.StarsEarned))
		if increment.Error != nil {
			return increment.Error
		}

		return tx.
			Where("student_id = ? AND task_id = ?", completion.StudentID, completion.TaskID).
			First(&record).Error
	})
	if err != nil {
		return models.StudentTask{}, err
	}

	return record, nil
}

// recheckSubmittable repeats the eligibility check against rows read inside the transaction,
// so a deadline or assignment change since the service's check is honoured.
func recheckSubmittable(tx *gorm.DB, completion Completion) error {
	var student models.Student
	if err := tx.Select("id", "group_id").First(&student, completion.StudentID).Error; err != nil {
		return err
	}

	var task models.Task
	if err := tx.Preload("Groups").First(&task, completion.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scoring.ErrTaskNotFound
		}
		return err
	}

	var existing models.StudentTask
	if err := tx.
		Where("student_id = ? AND task_id = ?", completion.StudentID, completion.TaskID).
		Limit(1).
		Find(&existing).Error; err != nil {
		return err
	}
	var record *models.StudentTask
	if existing.ID != 0 {
		record = &existing
	}

	err := scoring.CheckSubmittable(student, task, record, completion.CompletedAt)
	if errors.Is(err, scoring.ErrTaskAlreadyCompleted) {
		return ErrPersistenceConflict
	}
	return err
}

// translateWriteError relies on TranslateError, which both the postgres and sqlite drivers
// implement, to surface unique violations as gorm.ErrDuplicatedKey.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrPersistenceConflict
	}
	return err
}
