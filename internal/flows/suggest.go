package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
)

// StudySuggestionsInput lists the topics a student keeps getting wrong.
type StudySuggestionsInput struct {
	IncorrectTopics []string `json:"incorrectTopics"`
}

// StudySuggestionsOutput is the generated advice in Markdown. Topic
// links embedded in it point at the practice page with the topic
// preselected.
type StudySuggestionsOutput struct {
	Suggestions string `json:"suggestions"`
}

var studySuggestionsSchema = &llm.Schema{
	Name:        "study-suggestions",
	Description: "Personalized study suggestions in Markdown.",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"suggestions"},
		"properties": map[string]any{
			"suggestions": map[string]any{"type": "string"},
		},
	},
}

// GenerateStudySuggestions turns a list of weak topics into actionable
// study advice with practice deep links.
func GenerateStudySuggestions(ctx context.Context, p llm.Provider, in StudySuggestionsInput) (*StudySuggestionsOutput, error) {
	if len(in.IncorrectTopics) == 0 {
		return nil, validationErr("incorrectTopics", "must not be empty")
	}

	var out StudySuggestionsOutput
	err := generate(ctx, p, "generate study suggestions", llm.Request{
		System:   "You are an expert mentor for students preparing for competitive exams in India.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildStudySuggestionsPrompt(in)}},
		Schema:   studySuggestionsSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildStudySuggestionsPrompt(in StudySuggestionsInput) string {
	var sb strings.Builder
	sb.WriteString("A student has been consistently making mistakes in the following topics:\n")
	for _, t := range in.IncorrectTopics {
		fmt.Fprintf(&sb, "- %s\n", t)
	}
	sb.WriteString("\nBased on these weak areas, provide a list of actionable study suggestions. For each topic:\n")
	sb.WriteString("1. Briefly explain the importance of the topic for their exams.\n")
	sb.WriteString("2. Suggest specific sub-topics to focus on.\n")
	sb.WriteString("3. Recommend a study strategy (e.g., \"practice previous year questions\", \"create flashcards for formulas\").\n")
	sb.WriteString("4. Crucially, include a link for them to practice that specific topic. The link format must be exactly: /practice?topic=TOPIC_NAME, replacing TOPIC_NAME with the URL-encoded topic name.\n")
	sb.WriteString("\nFormat the entire output as a single Markdown string. Use headings for each topic.\n")
	return sb.String()
}
