package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
	"github.com/gethub-app/gethub/internal/model"
)

const (
	// MinQuestions and MaxQuestions bound a practice exam request.
	MinQuestions = 1
	MaxQuestions = 50
)

// PracticeExamInput is the request for a generated practice exam.
type PracticeExamInput struct {
	ExamTopic     string   `json:"examTopic"`
	NumQuestions  int      `json:"numQuestions"`
	SeenQuestions []string `json:"seenQuestions,omitempty"`
}

// PracticeExamOutput carries the generated questions.
type PracticeExamOutput struct {
	Questions []model.Question `json:"questions"`
}

// practiceExamSchema is the output schema for exam generation. Only
// the shape is enforced locally; question count and uniqueness are
// communicated to the model and may be violated by it.
var practiceExamSchema = &llm.Schema{
	Name:        "practice-exam",
	Description: "A set of generated practice exam questions.",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"questionId", "questionType", "questionText", "correctAnswer", "pointsPossible"},
					"properties": map[string]any{
						"questionId":   map[string]any{"type": "string"},
						"questionType": map[string]any{"type": "string", "enum": []any{"multipleChoice", "trueFalse", "freeText"}},
						"questionText": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"correctAnswer":  map[string]any{"type": "string"},
						"pointsPossible": map[string]any{"type": "number"},
					},
				},
			},
		},
	},
}

// GeneratePracticeExam asks the model for a set of unique questions on
// a topic, excluding question texts the student has already seen.
// Every returned question is stamped with the requested topic so that
// grading can attribute missed questions to it later.
func GeneratePracticeExam(ctx context.Context, p llm.Provider, in PracticeExamInput) (*PracticeExamOutput, error) {
	if strings.TrimSpace(in.ExamTopic) == "" {
		return nil, validationErr("examTopic", "must not be empty")
	}
	if in.NumQuestions < MinQuestions || in.NumQuestions > MaxQuestions {
		return nil, validationErr("numQuestions", fmt.Sprintf("must be between %d and %d", MinQuestions, MaxQuestions))
	}

	var out PracticeExamOutput
	err := generate(ctx, p, "generate practice exam", llm.Request{
		System:      practiceExamSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPracticeExamPrompt(in)}},
		Schema:      practiceExamSchema,
		Temperature: 0.7,
	}, &out)
	if err != nil {
		return nil, err
	}

	for i := range out.Questions {
		out.Questions[i].Topic = in.ExamTopic
	}
	return &out, nil
}

const practiceExamSystemPrompt = "You are an expert question creator for competitive exams in India. " +
	"You have deep knowledge of the syllabus and question patterns for various exams like UPSC, SSC, GATE, NEET, etc."

func buildPracticeExamPrompt(in PracticeExamInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your task is to generate a set of %d unique, non-repeating questions for a practice exam on the topic of %q.\n\n", in.NumQuestions, in.ExamTopic)
	sb.WriteString("The questions should be a mix of \"multipleChoice\", \"trueFalse\", and \"freeText\" types.\n")
	fmt.Fprintf(&sb, "- Base the questions on the official syllabus and past question patterns for %q.\n", in.ExamTopic)
	sb.WriteString("- For \"multipleChoice\" questions, provide exactly 4 options.\n")
	sb.WriteString("- For \"trueFalse\" questions, do not provide options.\n")
	sb.WriteString("- Ensure the correctAnswer is one of the provided options for multiple choice questions.\n")
	sb.WriteString("- Assign pointsPossible for each question: 10 points for objective questions and 20 for free text.\n")
	sb.WriteString("- Ensure every question has a unique questionId, like \"q1\", \"q2\", etc.\n")

	if len(in.SeenQuestions) > 0 {
		sb.WriteString("\nMost importantly, DO NOT repeat any of the following questions that the user has already seen:\n")
		for _, q := range in.SeenQuestions {
			fmt.Fprintf(&sb, "- %q\n", q)
		}
	}

	sb.WriteString("\nGenerate the questions now.\n")
	return sb.String()
}
