package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/repository"
	"github.com/noah-isme/evalstar-go-api/internal/scoring"
)

// ErrStudentNotFound indicates the authenticated student has no record.
var ErrStudentNotFound = errors.New("student not found")

// StudentTaskService exposes the student's view of assigned tasks.
type StudentTaskService interface {
	ListTasks(ctx context.Context, studentID uint) (dto.StudentTaskListResponse, error)
	GetTaskDetails(ctx context.Context, studentID, taskID uint) (dto.TaskDetailResponse, error)
}

type studentTaskService struct {
	students     repository.StudentRepository
	tasks        repository.TaskRepository
	studentTasks repository.StudentTaskRepository
	sanitizer    contentSanitizer
	logger       zerolog.Logger
	now          func() time.Time
}

// NewStudentTaskService constructs a StudentTaskService instance.
func NewStudentTaskService(students repository.StudentRepository, tasks repository.TaskRepository, studentTasks repository.StudentTaskRepository, logger zerolog.Logger) StudentTaskService {
	return &studentTaskService{
		students:     students,
		tasks:        tasks,
		studentTasks: studentTasks,
		sanitizer:    newContentSanitizer(),
		logger:       logger.With().Str("component", "student_task_service").Logger(),
		now:          time.Now,
	}
}

func (s *studentTaskService) ListTasks(ctx context.Context, studentID uint) (dto.StudentTaskListResponse, error) {
	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return dto.StudentTaskListResponse{}, err
	}

	tasks, err := s.tasks.ListByGroup(ctx, student.GroupID)
	if err != nil {
		return dto.StudentTaskListResponse{}, err
	}

	records, err := s.studentTasks.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentTaskListResponse{}, err
	}

	byTask := make(map[uint]models.StudentTask, len(records))
	for _, record := range records {
		byTask[record.TaskID] = record
	}

	now := s.now()
	partitioned := scoring.Partition(tasks, byTask, now)

	response := dto.StudentTaskListResponse{
		TotalStars: student.TotalStars,
		Available:  make([]dto.TaskSummaryResponse, 0, len(partitioned.Available)),
		Completed:  make([]dto.TaskSummaryResponse, 0, len(partitioned.Completed)),
	}
	for _, task := range partitioned.Available {
		response.Available = append(response.Available, s.summarize(task, nil, now))
	}
	for _, task := range partitioned.Completed {
		record := byTask[task.ID]
		response.Completed = append(response.Completed, s.summarize(task, &record, now))
	}

	return response, nil
}

func (s *studentTaskService) GetTaskDetails(ctx context.Context, studentID, taskID uint) (dto.TaskDetailResponse, error) {
	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	task, err := loadTask(ctx, s.tasks, taskID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	if visibility := scoring.CheckVisibility(student, task); !visibility.Visible {
		return dto.TaskDetailResponse{}, visibility.Reason
	}

	record, err := findCompletion(ctx, s.studentTasks, studentID, taskID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	now := s.now()
	response := dto.TaskDetailResponse{
		Task:      s.summarize(task, record, now),
		CanSubmit: scoring.CheckSubmittable(student, task, record, now) == nil,
	}

	if record == nil || !record.IsCompleted() {
		response.Questions = s.questions(task, nil)
		return response, nil
	}

	answers, err := s.studentTasks.ListAnswers(ctx, studentID, taskID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	chosen := make(map[uint]models.StudentAnswer, len(answers))
	correct := 0
	for _, answer := range answers {
		chosen[answer.QuestionID] = answer
		if answer.IsCorrect {
			correct++
		}
	}

	response.Questions = s.questions(task, chosen)
	result := &dto.TaskResultResponse{
		StarsEarned:    record.StarsEarned,
		CorrectCount:   correct,
		TotalQuestions: len(task.Questions),
		CompletionDate: record.CompletionDate,
	}
	if result.TotalQuestions > 0 {
		result.Percentage = float64(correct) / float64(result.TotalQuestions) * 100
	}
	response.Result = result

	return response, nil
}

func (s *studentTaskService) summarize(task models.Task, record *models.StudentTask, now time.Time) dto.TaskSummaryResponse {
	summary := dto.TaskSummaryResponse{
		ID:            task.ID,
		Title:         s.sanitizer.title(task.Title),
		Description:   s.sanitizer.body(task.Description),
		TeacherName:   s.sanitizer.title(task.Teacher.Name),
		MaxStars:      task.MaxStars,
		Deadline:      task.Deadline,
		QuestionCount: len(task.Questions),
		Status:        dto.TaskStatusAvailable,
	}

	switch {
	case record != nil && record.IsCompleted():
		stars := record.StarsEarned
		summary.Status = dto.TaskStatusCompleted
		summary.StarsEarned = &stars
		summary.CompletionDate = record.CompletionDate
	case task.IsExpired(now):
		summary.Status = dto.TaskStatusExpired
	}

	return summary
}

func (s *studentTaskService) questions(task models.Task, chosen map[uint]models.StudentAnswer) []dto.QuestionResponse {
	questions := make([]dto.QuestionResponse, 0, len(task.Questions))
	for _, question := range task.Questions {
		item := dto.QuestionResponse{
			ID:       question.ID,
			Text:     s.sanitizer.body(question.Text),
			Position: question.Position,
			Answers:  make([]dto.AnswerOptionResponse, 0, len(question.Answers)),
		}
		for _, answer := range question.Answers {
			item.Answers = append(item.Answers, dto.AnswerOptionResponse{
				ID:   answer.ID,
				Text: s.sanitizer.body(answer.Text),
			})
		}
		if answer, ok := chosen[question.ID]; ok {
			selected := answer.AnswerID
			isCorrect := answer.IsCorrect
			item.SelectedAnswerID = &selected
			item.IsCorrect = &isCorrect
		}
		questions = append(questions, item)
	}
	return questions
}

func loadStudent(ctx context.Context, repo repository.StudentRepository, studentID uint) (models.Student, error) {
	student, err := repo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func loadTask(ctx context.Context, repo repository.TaskRepository, taskID uint) (models.Task, error) {
	task, err := repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, scoring.ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// findCompletion returns the completion record for the pair, nil when none exists.
func findCompletion(ctx context.Context, repo repository.StudentTaskRepository, studentID, taskID uint) (*models.StudentTask, error) {
	record, err := repo.GetByStudentAndTask(ctx, studentID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
