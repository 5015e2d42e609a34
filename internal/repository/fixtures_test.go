package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

type seeded struct {
	group   models.Group
	other   models.Group
	student models.Student
	task    models.Task
}

// seedTask creates a group with one student and a task of questionCount questions assigned to it.
// The first answer of every question is the correct one.
func seedTask(t *testing.T, db *gorm.DB, questionCount int, deadline *time.Time) seeded {
	t.Helper()

	level := models.Level{Name: "Level 1"}
	require.NoError(t, db.Create(&level).Error)
	group := models.Group{LevelID: level.ID, GroupNumber: 1}
	other := models.Group{LevelID: level.ID, GroupNumber: 2}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&other).Error)

	teacher := models.Teacher{Name: "Mme Lina", Email: "lina@example.com"}
	require.NoError(t, db.Create(&teacher).Error)

	student := models.Student{Name: "Yasmine", Email: "yasmine@example.com", GroupID: group.ID}
	require.NoError(t, db.Create(&student).Error)

	task := models.Task{
		Title:     "Fractions",
		TeacherID: teacher.ID,
		MaxStars:  5,
		Deadline:  deadline,
		Groups:    []models.Group{group},
	}
	for i := 0; i < questionCount; i++ {
		task.Questions = append(task.Questions, models.Question{
			Text:     fmt.Sprintf("Question %d", i+1),
			Position: i + 1,
			Answers: []models.Answer{
				{Text: "right", IsCorrect: true},
				{Text: "wrong"},
			},
		})
	}
	require.NoError(t, db.Create(&task).Error)

	return seeded{group: group, other: other, student: student, task: task}
}

func chosenAnswers(task models.Task, correct int) []models.StudentAnswer {
	answers := make([]models.StudentAnswer, 0, len(task.Questions))
	for i, question := range task.Questions {
		pick := question.Answers[1]
		if i < correct {
			pick = question.Answers[0]
		}
		answers = append(answers, models.StudentAnswer{
			QuestionID: question.ID,
			AnswerID:   pick.ID,
			IsCorrect:  pick.IsCorrect,
		})
	}
	return answers
}
