package scoring

import (
	"time"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// buildTask returns a task with n questions; question i has answers 100*(i+1)+1 (correct) and 100*(i+1)+2.
func buildTask(id uint, n int, groupIDs ...uint) models.Task {
	task := models.Task{ID: id, Title: "Quiz", MaxStars: 5}
	for _, groupID := range groupIDs {
		task.Groups = append(task.Groups, models.Group{ID: groupID})
	}
	for i := 0; i < n; i++ {
		questionID := uint(i + 1)
		base := uint(100 * (i + 1))
		task.Questions = append(task.Questions, models.Question{
			ID:     questionID,
			TaskID: id,
			Answers: []models.Answer{
				{ID: base + 1, QuestionID: questionID, IsCorrect: true},
				{ID: base + 2, QuestionID: questionID},
			},
		})
	}
	return task
}

func timePtr(t time.Time) *time.Time {
	return &t
}
