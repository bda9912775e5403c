package flows

import (
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/model"
)

// ObjectiveQuestion is one multiple-choice or true/false question to
// grade by exact string comparison.
type ObjectiveQuestion struct {
	QuestionID     string             `json:"questionId"`
	QuestionType   model.QuestionType `json:"questionType"`
	QuestionText   string             `json:"questionText"`
	CorrectAnswer  string             `json:"correctAnswer"`
	StudentAnswer  string             `json:"studentAnswer"`
	PointsPossible int                `json:"pointsPossible"`
}

// ObjectiveGradingInput is the full objective subset of one attempt.
type ObjectiveGradingInput struct {
	Questions []ObjectiveQuestion `json:"questions"`
}

// ObjectiveGradingOutput aggregates per-question results and totals.
type ObjectiveGradingOutput struct {
	Results             []model.GradingResult `json:"results"`
	TotalPointsPossible int                   `json:"totalPointsPossible"`
	TotalPointsAwarded  int                   `json:"totalPointsAwarded"`
}

// AutoGradeObjective grades objective questions deterministically and
// locally, with no model call: an answer is correct iff it equals the
// correct answer after trimming whitespace and lowercasing. Points are
// all-or-nothing; there is no partial credit.
func AutoGradeObjective(in ObjectiveGradingInput) (*ObjectiveGradingOutput, error) {
	for _, q := range in.Questions {
		if !q.QuestionType.IsObjective() {
			return nil, validationErr("questionType", fmt.Sprintf("question %s has non-objective type %q", q.QuestionID, q.QuestionType))
		}
	}

	out := &ObjectiveGradingOutput{Results: make([]model.GradingResult, 0, len(in.Questions))}
	for _, q := range in.Questions {
		out.TotalPointsPossible += q.PointsPossible

		isCorrect := normalizeAnswer(q.StudentAnswer) == normalizeAnswer(q.CorrectAnswer)
		pointsAwarded := 0
		feedback := "Incorrect. The correct answer is " + q.CorrectAnswer
		if isCorrect {
			pointsAwarded = q.PointsPossible
			feedback = "Correct!"
		}
		out.TotalPointsAwarded += pointsAwarded

		out.Results = append(out.Results, model.GradingResult{
			QuestionID:    q.QuestionID,
			IsCorrect:     isCorrect,
			PointsAwarded: pointsAwarded,
			Feedback:      feedback,
		})
	}

	return out, nil
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
