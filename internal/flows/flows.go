// Package flows implements the AI generation functions: stateless
// request/response calls that validate their input, format a prompt,
// invoke a generative model through the llm provider layer, and
// validate the response against a fixed output schema.
package flows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gethub-app/gethub/internal/llm"
)

// ValidationError reports input that violates a function's schema.
// It is returned before any remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// GenerationError reports a failed model call or a model response that
// did not conform to the output schema.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// generate runs one provider call and unmarshals the validated JSON
// response into out. All failures come back as *GenerationError.
func generate(ctx context.Context, p llm.Provider, op string, req llm.Request, out any) error {
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return &GenerationError{Op: op, Err: err}
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &GenerationError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
