package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/config"
	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/handler"
	"github.com/noah-isme/evalstar-go-api/internal/middleware"
	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/repository"
	"github.com/noah-isme/evalstar-go-api/internal/router"
	"github.com/noah-isme/evalstar-go-api/internal/service"
)

type envelope[T any] struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    T                      `json:"data"`
	Details map[string]interface{} `json:"details"`
}

type studentApp struct {
	app     *fiber.App
	db      *gorm.DB
	student models.Student
	group   models.Group
	other   models.Group
	teacher models.Teacher
}

func setupStudentApp(t *testing.T) studentApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	level := models.Level{Name: "Level 3"}
	require.NoError(t, db.Create(&level).Error)
	group := models.Group{LevelID: level.ID, GroupNumber: 2}
	other := models.Group{LevelID: level.ID, GroupNumber: 3}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&other).Error)
	teacher := models.Teacher{Name: "Mme Nadia", Email: "nadia@example.com"}
	require.NoError(t, db.Create(&teacher).Error)
	student := models.Student{Name: "Ines", Email: "ines@example.com", GroupID: group.ID}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.Student{Name: "Rayan", Email: "rayan@example.com", GroupID: group.ID, TotalStars: 2}).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	students := repository.NewStudentRepository(db)
	tasks := repository.NewTaskRepository(db)
	studentTasks := repository.NewStudentTaskRepository(db)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	ranking := service.NewRankingService(students, nil, time.Minute, logger)
	submissions := service.NewSubmissionService(service.SubmissionDependencies{
		Students:     students,
		Tasks:        tasks,
		StudentTasks: studentTasks,
		Submissions:  repository.NewSubmissionRepository(db),
		Ranking:      ranking,
		Activity:     activity,
	}, validate, logger)

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret", SubmissionRateLimit: 100, SubmissionRateWindow: time.Minute}, router.Dependencies{
		StudentTaskHandler: handler.NewStudentTaskHandler(service.NewStudentTaskService(students, tasks, studentTasks, logger), submissions, logger),
		RankingHandler:     handler.NewRankingHandler(ranking, logger),
		ActivityHandler:    handler.NewActivityHandler(activity, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64)
			if err == nil {
				c.Locals("user_id", uint(id))
			}
			role := c.Get("X-Test-Role")
			if role == "" {
				role = "student"
			}
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return studentApp{app: app, db: db, student: student, group: group, other: other, teacher: teacher}
}

func (s studentApp) createTask(t *testing.T, title string, questions int, deadline *time.Time, group models.Group) models.Task {
	t.Helper()
	task := models.Task{Title: title, TeacherID: s.teacher.ID, MaxStars: 5, Deadline: deadline, Groups: []models.Group{group}}
	for i := 0; i < questions; i++ {
		task.Questions = append(task.Questions, models.Question{
			Text:     fmt.Sprintf("Q%d", i+1),
			Position: i + 1,
			Answers:  []models.Answer{{Text: "yes", IsCorrect: true}, {Text: "no"}},
		})
	}
	require.NoError(t, s.db.Create(&task).Error)
	return task
}

func (s studentApp) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(s.student.ID), 10))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func picks(task models.Task, correct int) []uint {
	ids := make([]uint, 0, len(task.Questions))
	for i, question := range task.Questions {
		if i < correct {
			ids = append(ids, question.Answers[0].ID)
		} else {
			ids = append(ids, question.Answers[1].ID)
		}
	}
	return ids
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func submitPath(taskID uint) string {
	return fmt.Sprintf("/api/v1/student/tasks/%d/submit", taskID)
}

func TestStudentTaskHandlerSubmitFlow(t *testing.T) {
	s := setupStudentApp(t)
	task := s.createTask(t, "Geometry", 4, nil, s.group)

	resp := s.do(t, http.MethodGet, "/api/v1/student/tasks", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list envelope[dto.StudentTaskListResponse]
	decodeResponse(t, resp, &list)
	require.True(t, list.Success)
	require.Len(t, list.Data.Available, 1)
	require.Empty(t, list.Data.Completed)

	resp = s.do(t, http.MethodPost, submitPath(task.ID), map[string]interface{}{"answer_ids": picks(task, 3)})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var submitted envelope[dto.SubmissionResultResponse]
	decodeResponse(t, resp, &submitted)
	require.Equal(t, "task submitted", submitted.Message)
	require.Equal(t, 4, submitted.Data.StarsEarned)
	require.Equal(t, 4, submitted.Data.TotalStars)

	resp = s.do(t, http.MethodPost, submitPath(task.ID), map[string]interface{}{"answer_ids": picks(task, 4)})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/student/tasks", nil)
	decodeResponse(t, resp, &list)
	require.Empty(t, list.Data.Available)
	require.Len(t, list.Data.Completed, 1)
	require.Equal(t, 4, list.Data.TotalStars)

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/student/tasks/%d", task.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detail envelope[dto.TaskDetailResponse]
	decodeResponse(t, resp, &detail)
	require.False(t, detail.Data.CanSubmit)
	require.NotNil(t, detail.Data.Result)
	require.Equal(t, 3, detail.Data.Result.CorrectCount)

	resp = s.do(t, http.MethodGet, "/api/v1/student/ranking", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ranking envelope[dto.RankingResponse]
	decodeResponse(t, resp, &ranking)
	require.Equal(t, 1, ranking.Data.Rank)
	require.Equal(t, "Level 3 - 2", ranking.Data.Group.Label)

	resp = s.do(t, http.MethodGet, "/api/v1/student/activity", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var activity envelope[[]dto.ActivityResponse]
	decodeResponse(t, resp, &activity)
	require.Len(t, activity.Data, 1)
	require.Equal(t, models.ActivityTaskCompleted, activity.Data[0].Action)
}

func TestStudentTaskHandlerSubmitErrors(t *testing.T) {
	s := setupStudentApp(t)
	past := time.Now().Add(-time.Hour)
	open := s.createTask(t, "Open", 3, nil, s.group)
	expired := s.createTask(t, "Expired", 1, &past, s.group)
	foreign := s.createTask(t, "Foreign", 1, nil, s.other)

	t.Run("incomplete", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, submitPath(open.ID), map[string]interface{}{"answer_ids": picks(open, 3)[:1]})
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		var body envelope[interface{}]
		decodeResponse(t, resp, &body)
		require.False(t, body.Success)
		require.Equal(t, "all questions must be answered", body.Message)
		require.EqualValues(t, 3, body.Details["expected"])
		require.EqualValues(t, 1, body.Details["received"])
	})

	t.Run("invalid answer", func(t *testing.T) {
		ids := append(picks(open, 3)[:2], foreign.Questions[0].Answers[0].ID)
		resp := s.do(t, http.MethodPost, submitPath(open.ID), map[string]interface{}{"answer_ids": ids})
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		var body envelope[interface{}]
		decodeResponse(t, resp, &body)
		require.EqualValues(t, foreign.Questions[0].Answers[0].ID, body.Details["answer_id"])
	})

	t.Run("expired", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, submitPath(expired.ID), map[string]interface{}{"answer_ids": picks(expired, 1)})
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("other group", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, submitPath(foreign.ID), map[string]interface{}{"answer_ids": picks(foreign, 1)})
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad task id", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/student/tasks/abc/submit", map[string]interface{}{"answer_ids": []uint{1}})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, submitPath(open.ID), strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(s.student.ID), 10))
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("zero answer id", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, submitPath(open.ID), map[string]interface{}{"answer_ids": []uint{0, 0, 0}})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	var count int64
	require.NoError(t, s.db.Model(&models.StudentAnswer{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestStudentTaskHandlerSubmitCarriesCorrelationID(t *testing.T) {
	s := setupStudentApp(t)
	task := s.createTask(t, "Algebra", 2, nil, s.group)

	payload, err := json.Marshal(map[string]interface{}{"answer_ids": picks(task, 2)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, submitPath(task.ID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(s.student.ID), 10))
	req.Header.Set("X-Correlation-ID", "corr-7")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "corr-7", resp.Header.Get("X-Correlation-ID"))

	resp = s.do(t, http.MethodGet, "/api/v1/student/activity", nil)
	var activity envelope[[]dto.ActivityResponse]
	decodeResponse(t, resp, &activity)
	require.Len(t, activity.Data, 1)
	require.Equal(t, "corr-7", activity.Data[0].Metadata["correlation_id"])
}

func TestStudentRoutesRequireStudentRole(t *testing.T) {
	s := setupStudentApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/tasks", nil)
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(s.student.ID), 10))
	req.Header.Set("X-Test-Role", "teacher")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/student/ranking", nil)
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStudentTaskHandlerDetailNotFound(t *testing.T) {
	s := setupStudentApp(t)

	resp := s.do(t, http.MethodGet, "/api/v1/student/tasks/999", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var body envelope[interface{}]
	decodeResponse(t, resp, &body)
	require.Equal(t, "task not found", body.Message)
}
