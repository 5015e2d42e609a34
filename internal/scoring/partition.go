package scoring

import (
	"time"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// Partitioned splits a group's tasks from one student's point of view.
type Partitioned struct {
	Available []models.Task
	Completed []models.Task
}

// Partition splits tasks into available and completed sets. records is keyed by task id.
// Expired tasks the student never completed belong to neither set.
func Partition(tasks []models.Task, records map[uint]models.StudentTask, now time.Time) Partitioned {
	result := Partitioned{
		Available: make([]models.Task, 0, len(tasks)),
		Completed: make([]models.Task, 0),
	}

	for _, task := range tasks {
		if record, ok := records[task.ID]; ok && record.IsCompleted() {
			result.Completed = append(result.Completed, task)
			continue
		}
		if !task.IsExpired(now) {
			result.Available = append(result.Available, task)
		}
	}

	return result
}
