package scoring

import "github.com/noah-isme/evalstar-go-api/internal/models"

// QuestionResult is the graded outcome of one submitted answer.
type QuestionResult struct {
	QuestionID uint `json:"question_id"`
	AnswerID   uint `json:"answer_id"`
	IsCorrect  bool `json:"is_correct"`
}

// GradeResult aggregates the per-question results of a submission.
type GradeResult struct {
	Results        []QuestionResult
	CorrectCount   int
	TotalQuestions int
}

// Percentage returns the share of correct answers in the range [0, 100].
func (r GradeResult) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.TotalQuestions) * 100
}

// Grade scores answerIDs against the task's questions. Questions and their answers must be preloaded.
// Correctness is the stored IsCorrect flag of the chosen answer.
func Grade(task models.Task, answerIDs []uint) (GradeResult, error) {
	total := len(task.Questions)
	if total == 0 {
		return GradeResult{}, ErrTaskMisconfigured
	}
	if len(answerIDs) != total {
		return GradeResult{}, &IncompleteSubmissionError{Expected: total, Received: len(answerIDs)}
	}

	type owned struct {
		questionID uint
		isCorrect  bool
	}
	index := make(map[uint]owned, total*4)
	for _, question := range task.Questions {
		for _, answer := range question.Answers {
			index[answer.ID] = owned{questionID: question.ID, isCorrect: answer.IsCorrect}
		}
	}

	result := GradeResult{
		Results:        make([]QuestionResult, 0, total),
		TotalQuestions: total,
	}
	answered := make(map[uint]struct{}, total)

	for _, answerID := range answerIDs {
		entry, ok := index[answerID]
		if !ok {
			return GradeResult{}, &InvalidAnswerError{AnswerID: answerID}
		}
		if _, dup := answered[entry.questionID]; dup {
			return GradeResult{}, &InvalidAnswerError{AnswerID: answerID, QuestionID: entry.questionID}
		}
		answered[entry.questionID] = struct{}{}

		if entry.isCorrect {
			result.CorrectCount++
		}
		result.Results = append(result.Results, QuestionResult{
			QuestionID: entry.questionID,
			AnswerID:   answerID,
			IsCorrect:  entry.isCorrect,
		})
	}

	return result, nil
}

// AuditCorrectAnswers returns the questions that do not have exactly one correct answer.
func AuditCorrectAnswers(task models.Task) []uint {
	var flagged []uint
	for _, question := range task.Questions {
		correct := 0
		for _, answer := range question.Answers {
			if answer.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			flagged = append(flagged, question.ID)
		}
	}
	return flagged
}
