package models

import "time"

// StudentTask is the completion record of a task for a student.
// The (student_id, task_id) pair is unique; at most one completion per pair.
type StudentTask struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_student_task_pair" json:"student_id"`
	TaskID         uint       `gorm:"not null;uniqueIndex:idx_student_task_pair;index" json:"task_id"`
	StarsEarned    int        `gorm:"not null;default:0" json:"stars_earned"`
	Completed      bool       `gorm:"not null;default:false" json:"completed"`
	CompletionDate *time.Time `json:"completion_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Student        Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Task           Task       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsCompleted reports whether the record marks the task as done.
func (s StudentTask) IsCompleted() bool {
	return s.Completed
}

// StudentAnswer is the answer chosen by a student for one question. Rows are append-only.
type StudentAnswer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_student_question_pair" json:"student_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_student_question_pair;index" json:"question_id"`
	AnswerID   uint      `gorm:"not null;index" json:"answer_id"`
	IsCorrect  bool      `gorm:"not null" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	Student    Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Question   Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Answer     Answer    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
