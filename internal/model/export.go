package model

import "time"

// AttemptExport is the top-level JSON structure for exporting one
// user's exam history from the CLI.
type AttemptExport struct {
	UserID      string        `json:"user_id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	ExportedAt  time.Time     `json:"exported_at"`
	Attempts    []ExamAttempt `json:"attempts"`
}
