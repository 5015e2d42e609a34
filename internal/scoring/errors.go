package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound indicates the task does not exist or is not assigned to the student's group.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskExpired indicates the task deadline has passed.
	ErrTaskExpired = errors.New("task deadline has passed")
	// ErrTaskAlreadyCompleted indicates the student already completed the task.
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	// ErrIncompleteSubmission indicates the answer count does not match the question count.
	ErrIncompleteSubmission = errors.New("incomplete submission")
	// ErrInvalidAnswer indicates an answer does not belong to a question of the task.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrTaskMisconfigured indicates a task that cannot be graded, such as one without questions.
	ErrTaskMisconfigured = errors.New("task has no questions")
)

// IncompleteSubmissionError carries the expected and received answer counts.
type IncompleteSubmissionError struct {
	Expected int
	Received int
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("%s: expected %d answers, received %d", ErrIncompleteSubmission, e.Expected, e.Received)
}

// Unwrap lets errors.Is match ErrIncompleteSubmission.
func (e *IncompleteSubmissionError) Unwrap() error {
	return ErrIncompleteSubmission
}

// InvalidAnswerError identifies the rejected answer.
type InvalidAnswerError struct {
	AnswerID   uint
	QuestionID uint
}

func (e *InvalidAnswerError) Error() string {
	if e.QuestionID != 0 {
		return fmt.Sprintf("%s: answer %d duplicates question %d", ErrInvalidAnswer, e.AnswerID, e.QuestionID)
	}
	return fmt.Sprintf("%s: answer %d does not belong to this task", ErrInvalidAnswer, e.AnswerID)
}

// Unwrap lets errors.Is match ErrInvalidAnswer.
func (e *InvalidAnswerError) Unwrap() error {
	return ErrInvalidAnswer
}
