package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
)

// CommunicationInput is one turn of the English-practice conversation.
// History carries prior turns oldest-first; NativeLanguage, when set,
// lets the coach explain corrections in the student's own language.
type CommunicationInput struct {
	Message        string        `json:"message"`
	History        []llm.Message `json:"history,omitempty"`
	NativeLanguage string        `json:"nativeLanguage,omitempty"`
	Scenario       string        `json:"scenario,omitempty"`
}

// CommunicationOutput is the coach's conversational reply.
type CommunicationOutput struct {
	Reply string `json:"reply"`
}

var communicationSchema = &llm.Schema{
	Name:        "communication-feedback",
	Description: "A conversational reply from an English communication coach.",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"reply"},
		"properties": map[string]any{
			"reply": map[string]any{"type": "string"},
		},
	},
}

// GenerateCommunicationFeedback produces the coach's next reply in an
// English-practice conversation, correcting mistakes gently as it goes.
func GenerateCommunicationFeedback(ctx context.Context, p llm.Provider, in CommunicationInput) (*CommunicationOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, validationErr("message", "must not be empty")
	}

	messages := make([]llm.Message, 0, len(in.History)+1)
	messages = append(messages, in.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: in.Message})

	var out CommunicationOutput
	err := generate(ctx, p, "generate communication feedback", llm.Request{
		System:   buildCommunicationSystemPrompt(in),
		Messages: messages,
		Schema:   communicationSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildCommunicationSystemPrompt(in CommunicationInput) string {
	var sb strings.Builder
	sb.WriteString("You are Gethub, a friendly and patient English communication coach. ")
	sb.WriteString("You are helping a student in India practice their spoken English for interviews and daily conversation.\n\n")
	sb.WriteString("Your goals:\n")
	sb.WriteString("- Keep the conversation flowing naturally. Ask follow-up questions.\n")
	sb.WriteString("- When the student makes a grammatical mistake or uses an awkward phrase, gently correct it and show the better phrasing before continuing the conversation.\n")
	sb.WriteString("- Keep your replies short and conversational, as if speaking aloud.\n")
	sb.WriteString("- Be encouraging. Never mock or belittle the student.\n")
	if in.NativeLanguage != "" {
		fmt.Fprintf(&sb, "- The student's native language is %s. When explaining a correction, you may briefly explain it in %s so it is easier to understand.\n", in.NativeLanguage, in.NativeLanguage)
	}
	if in.Scenario != "" {
		fmt.Fprintf(&sb, "- Role-play the following scenario with the student: %s.\n", in.Scenario)
	}
	sb.WriteString("\nReturn your reply in the reply field.")
	return sb.String()
}
