package models

import "time"

// Task is a quiz-style evaluation assigned to one or more groups.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	TeacherID   uint       `gorm:"not null;index" json:"teacher_id"`
	MaxStars    int        `gorm:"not null;default:5;check:max_stars BETWEEN 1 AND 5" json:"max_stars"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Teacher     Teacher    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	Groups      []Group    `gorm:"many2many:task_groups;" json:"groups"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// IsExpired reports whether the deadline is set and no longer strictly in the future.
func (t Task) IsExpired(reference time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return !t.Deadline.After(reference)
}

// IsAssignedTo reports whether the task is assigned to the given group.
// Groups must be preloaded.
func (t Task) IsAssignedTo(groupID uint) bool {
	for _, group := range t.Groups {
		if group.ID == groupID {
			return true
		}
	}
	return false
}

// Question belongs to exactly one task.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Answers   []Answer  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

// Answer is one option of a question. Exactly one answer per question is correct.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
