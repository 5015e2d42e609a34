package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

var fixedNow = time.Date(2024, time.March, 12, 9, 30, 0, 0, time.UTC)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type classroom struct {
	group      models.Group
	other      models.Group
	teacher    models.Teacher
	student    models.Student
	classmates []models.Student
}

// seedClassroom creates "Level 2 - 1" with Yasmine and two classmates, plus an empty second group.
func seedClassroom(t *testing.T, db *gorm.DB) classroom {
	t.Helper()

	level := models.Level{Name: "Level 2"}
	require.NoError(t, db.Create(&level).Error)
	group := models.Group{LevelID: level.ID, GroupNumber: 1}
	other := models.Group{LevelID: level.ID, GroupNumber: 2}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&other).Error)

	teacher := models.Teacher{Name: "M. Karim", Email: "karim@example.com"}
	require.NoError(t, db.Create(&teacher).Error)

	student := models.Student{Name: "Yasmine", Email: "yasmine@example.com", GroupID: group.ID}
	require.NoError(t, db.Create(&student).Error)

	classmates := []models.Student{
		{Name: "Adam", Email: "adam@example.com", GroupID: group.ID, TotalStars: 3},
		{Name: "Sara", Email: "sara@example.com", GroupID: group.ID, TotalStars: 7},
	}
	require.NoError(t, db.Create(&classmates).Error)

	return classroom{group: group, other: other, teacher: teacher, student: student, classmates: classmates}
}

type taskOptions struct {
	title     string
	questions int
	maxStars  int
	deadline  *time.Time
	group     *models.Group
}

// createTask stores a task whose first answer of every question is the correct one.
func createTask(t *testing.T, db *gorm.DB, c classroom, opts taskOptions) models.Task {
	t.Helper()

	group := c.group
	if opts.group != nil {
		group = *opts.group
	}
	if opts.maxStars == 0 {
		opts.maxStars = 5
	}
	if opts.title == "" {
		opts.title = "Fractions"
	}

	task := models.Task{
		Title:     opts.title,
		TeacherID: c.teacher.ID,
		MaxStars:  opts.maxStars,
		Deadline:  opts.deadline,
		Groups:    []models.Group{group},
	}
	for i := 0; i < opts.questions; i++ {
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
	return task
}

// answerIDs picks the correct answer for the first `correct` questions and a wrong one after that.
func answerIDs(task models.Task, correct int) []uint {
	ids := make([]uint, 0, len(task.Questions))
	for i, question := range task.Questions {
		if i < correct {
			ids = append(ids, question.Answers[0].ID)
			continue
		}
		ids = append(ids, question.Answers[1].ID)
	}
	return ids
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
