package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
)

// SyllabusNotesInput names the exam and topic to write notes for.
type SyllabusNotesInput struct {
	ExamName string `json:"examName"`
	Topic    string `json:"topic"`
}

// SyllabusNotesOutput is the generated markdown. The prompt asks for
// roughly twenty pages of content; no length cap is enforced locally.
type SyllabusNotesOutput struct {
	Notes string `json:"notes"`
}

var syllabusNotesSchema = &llm.Schema{
	Name:        "syllabus-notes",
	Description: "Long-form study notes in Markdown.",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"notes"},
		"properties": map[string]any{
			"notes": map[string]any{"type": "string"},
		},
	},
}

// GenerateSyllabusNotes produces in-depth study notes for one syllabus
// topic of one exam.
func GenerateSyllabusNotes(ctx context.Context, p llm.Provider, in SyllabusNotesInput) (*SyllabusNotesOutput, error) {
	if strings.TrimSpace(in.ExamName) == "" {
		return nil, validationErr("examName", "must not be empty")
	}
	if strings.TrimSpace(in.Topic) == "" {
		return nil, validationErr("topic", "must not be empty")
	}

	var out SyllabusNotesOutput
	err := generate(ctx, p, "generate syllabus notes", llm.Request{
		System:   "You are an expert tutor and content creator for competitive exams.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildSyllabusNotesPrompt(in)}},
		Schema:   syllabusNotesSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildSyllabusNotesPrompt(in SyllabusNotesInput) string {
	var sb strings.Builder
	sb.WriteString("Your task is to generate extremely comprehensive, well-structured, and in-depth study notes for a specific topic within a given exam syllabus. ")
	sb.WriteString("The goal is to produce a document that is very detailed, roughly equivalent to 20 pages of content.\n\n")
	fmt.Fprintf(&sb, "Exam: %q\n", in.ExamName)
	fmt.Fprintf(&sb, "Syllabus Topic: %q\n\n", in.Topic)
	sb.WriteString("Please generate very detailed and extensive notes on the specified topic. The notes must:\n")
	sb.WriteString("- Be accurate, thorough, and up-to-date.\n")
	sb.WriteString("- Cover all key concepts, definitions, theories, and important points related to the topic in great detail.\n")
	sb.WriteString("- Use clear and concise language, but do not sacrifice depth for brevity. Elaborate extensively on each point.\n")
	sb.WriteString("- Be structured logically with multiple levels of headings, subheadings, bullet points, and numbered lists.\n")
	sb.WriteString("- Include examples, case studies, and practical applications where relevant.\n")
	fmt.Fprintf(&sb, "- Be suitable for a student preparing for the %q exam who needs a deep and comprehensive understanding of the topic.\n", in.ExamName)
	sb.WriteString("- The final output should be a single, long-form text in Markdown format.\n")
	return sb.String()
}
