package dto

import "time"

// Task status values as seen by a student.
const (
	TaskStatusAvailable = "available"
	TaskStatusExpired   = "expired"
	TaskStatusCompleted = "completed"
)

// TaskSummaryResponse describes a task in student task lists.
type TaskSummaryResponse struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TeacherName    string     `json:"teacher_name"`
	MaxStars       int        `json:"max_stars"`
	Deadline       *time.Time `json:"deadline"`
	QuestionCount  int        `json:"question_count"`
	Status         string     `json:"status"`
	StarsEarned    *int       `json:"stars_earned,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// StudentTaskListResponse partitions a student's tasks.
type StudentTaskListResponse struct {
	TotalStars int                   `json:"total_stars"`
	Available  []TaskSummaryResponse `json:"available"`
	Completed  []TaskSummaryResponse `json:"completed"`
}

// AnswerOptionResponse is an answer option; correctness is never exposed.
type AnswerOptionResponse struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionResponse is a question with its options and, once completed, the student's choice.
type QuestionResponse struct {
	ID               uint                   `json:"id"`
	Text             string                 `json:"text"`
	Position         int                    `json:"position"`
	Answers          []AnswerOptionResponse `json:"answers"`
	SelectedAnswerID *uint                  `json:"selected_answer_id,omitempty"`
	IsCorrect        *bool                  `json:"is_correct,omitempty"`
}

// TaskResultResponse is the stored outcome of a completed task.
type TaskResultResponse struct {
	StarsEarned    int        `json:"stars_earned"`
	CorrectCount   int        `json:"correct_count"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     float64    `json:"percentage"`
	CompletionDate *time.Time `json:"completion_date"`
}

// TaskDetailResponse is returned when a student opens a task.
type TaskDetailResponse struct {
	Task      TaskSummaryResponse `json:"task"`
	CanSubmit bool                `json:"can_submit"`
	Questions []QuestionResponse  `json:"questions"`
	Result    *TaskResultResponse `json:"result,omitempty"`
}

// SubmitTaskRequest carries the chosen answer of every question, in question order.
type SubmitTaskRequest struct {
	AnswerIDs []uint `json:"answer_ids" validate:"dive,gt=0"`
}

// SubmissionResultResponse is returned after a successful submission.
type SubmissionResultResponse struct {
	TaskID         uint      `json:"task_id"`
	Status         string    `json:"status"`
	StarsEarned    int       `json:"stars_earned"`
	MaxStars       int       `json:"max_stars"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CompletionDate time.Time `json:"completion_date"`
	TotalStars     int       `json:"total_stars"`
}

// TaskCompletedEvent is broadcast after a submission commits.
type TaskCompletedEvent struct {
	EventID       string    `json:"event_id"`
	Source        string    `json:"source"`
	StudentID     uint      `json:"student_id"`
	GroupID       uint      `json:"group_id"`
	TaskID        uint      `json:"task_id"`
	StarsEarned   int       `json:"stars_earned"`
	CompletedAt   time.Time `json:"completed_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}
