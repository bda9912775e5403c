package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gethub-app/gethub/internal/model"
)

// ExportUserAttempts builds an export-ready record of one user's
// graded attempts.
func (s *Store) ExportUserAttempts(ctx context.Context, userID string) (*model.AttemptExport, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	attempts, err := s.ListAttempts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	return &model.AttemptExport{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		ExportedAt:  time.Now().UTC(),
		Attempts:    attempts,
	}, nil
}
