package scoring

import (
	"time"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// Visibility is the outcome of a visibility check.
type Visibility struct {
	Visible bool
	Reason  error
}

// CheckVisibility reports whether the task is assigned to the student's group.
// The task's groups must be preloaded.
func CheckVisibility(student models.Student, task models.Task) Visibility {
	if !task.IsAssignedTo(student.GroupID) {
		return Visibility{Visible: false, Reason: ErrTaskNotFound}
	}
	return Visibility{Visible: true}
}

// CheckSubmittable returns nil when the student may submit the task at now.
// record is the existing completion record for the pair, nil when none exists.
func CheckSubmittable(student models.Student, task models.Task, record *models.StudentTask, now time.Time) error {
	if visibility := CheckVisibility(student, task); !visibility.Visible {
		return visibility.Reason
	}
	if task.IsExpired(now) {
		return ErrTaskExpired
	}
	if record != nil && record.IsCompleted() {
		return ErrTaskAlreadyCompleted
	}
	return nil
}
