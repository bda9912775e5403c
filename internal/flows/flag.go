package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
)

// FlagAnswerInput is one free-text answer to review.
type FlagAnswerInput struct {
	Question      string `json:"question"`
	StudentAnswer string `json:"studentAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
}

// FlagAnswerOutput is the model's judgment of the answer. There is no
// local heuristic; the judgment is entirely the model's.
type FlagAnswerOutput struct {
	IsPotentiallyIncorrect bool   `json:"isPotentiallyIncorrect"`
	Reason                 string `json:"reason"`
}

var flagAnswerSchema = &llm.Schema{
	Name:        "flag-answer",
	Description: "Judgment of whether a free-text answer is potentially incorrect or incomplete.",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"isPotentiallyIncorrect", "reason"},
		"properties": map[string]any{
			"isPotentiallyIncorrect": map[string]any{"type": "boolean"},
			"reason":                 map[string]any{"type": "string"},
		},
	},
}

// FlagAnswer asks the model whether a free-text answer is potentially
// incorrect or incomplete relative to the correct answer.
func FlagAnswer(ctx context.Context, p llm.Provider, in FlagAnswerInput) (*FlagAnswerOutput, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, validationErr("question", "must not be empty")
	}
	if strings.TrimSpace(in.CorrectAnswer) == "" {
		return nil, validationErr("correctAnswer", "must not be empty")
	}

	var out FlagAnswerOutput
	err := generate(ctx, p, "flag answer", llm.Request{
		System:   "You are an expert teacher reviewing student answers.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildFlagAnswerPrompt(in)}},
		Schema:   flagAnswerSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildFlagAnswerPrompt(in FlagAnswerInput) string {
	var sb strings.Builder
	sb.WriteString("You will be given a question, the student's answer, and the correct answer.\n\n")
	sb.WriteString("Your task is to determine if the student's answer is potentially incorrect or incomplete based on the correct answer.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", in.Question)
	fmt.Fprintf(&sb, "Student's Answer: %s\n", in.StudentAnswer)
	fmt.Fprintf(&sb, "Correct Answer: %s\n\n", in.CorrectAnswer)
	sb.WriteString("Determine if the student's answer is potentially incorrect or incomplete. ")
	sb.WriteString("If it is, explain why in the reason field. Set the isPotentiallyIncorrect field appropriately.\n")
	return sb.String()
}
