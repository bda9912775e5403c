package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
)

// SummaryQuestion is the merged per-question view fed to the summary
// prompt: objective results use the grading feedback, free-text
// questions use the flagging judgment.
type SummaryQuestion struct {
	QuestionText  string `json:"questionText"`
	StudentAnswer string `json:"studentAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Feedback      string `json:"feedback,omitempty"`
}

// ExamSummaryInput describes one graded exam.
type ExamSummaryInput struct {
	StudentName string            `json:"studentName"`
	ExamName    string            `json:"examName"`
	Questions   []SummaryQuestion `json:"questions"`
}

// ExamSummaryOutput is the narrative performance summary.
type ExamSummaryOutput struct {
	Summary string `json:"summary"`
}

var examSummarySchema = &llm.Schema{
	Name:        "exam-summary",
	Description: "A narrative summary of a student's exam performance.",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"summary"},
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
		},
	},
}

// GenerateExamSummary synthesizes a natural-language summary of the
// student's performance across all questions of one attempt.
func GenerateExamSummary(ctx context.Context, p llm.Provider, in ExamSummaryInput) (*ExamSummaryOutput, error) {
	if strings.TrimSpace(in.ExamName) == "" {
		return nil, validationErr("examName", "must not be empty")
	}
	if len(in.Questions) == 0 {
		return nil, validationErr("questions", "must not be empty")
	}

	var out ExamSummaryOutput
	err := generate(ctx, p, "generate exam summary", llm.Request{
		System:   examSummarySystemPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildExamSummaryPrompt(in)}},
		Schema:   examSummarySchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const examSummarySystemPrompt = "You are an AI assistant who helps teachers by summarizing student exam performance " +
	"for competitive exams (like UPSC, SSC, GATE, etc.)."

func buildExamSummaryPrompt(in ExamSummaryInput) string {
	var sb strings.Builder
	sb.WriteString("Given the following information about a student's performance on an exam, generate a summary of their overall performance.\n")
	sb.WriteString("Highlight their strengths and weaknesses. Be encouraging and provide actionable advice for improvement, focusing on how they can better prepare for future competitive exams.\n\n")
	fmt.Fprintf(&sb, "Student Name: %s\n", in.StudentName)
	fmt.Fprintf(&sb, "Exam Name: %s\n\n", in.ExamName)
	sb.WriteString("Questions:\n")
	for _, q := range in.Questions {
		fmt.Fprintf(&sb, "Question: %s\n", q.QuestionText)
		fmt.Fprintf(&sb, "Student Answer: %s\n", q.StudentAnswer)
		correct := "No"
		if q.IsCorrect {
			correct = "Yes"
		}
		fmt.Fprintf(&sb, "Correct: %s\n", correct)
		if q.Feedback != "" {
			fmt.Fprintf(&sb, "Feedback: %s\n", q.Feedback)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
