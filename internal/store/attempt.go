package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gethub-app/gethub/internal/model"
)

// ErrDuplicateAttempt is returned when an attempt with the same
// idempotency key already exists for the user.
var ErrDuplicateAttempt = errors.New("attempt already submitted")

// CreateAttempt persists a graded attempt and fills in its id.
func (s *Store) CreateAttempt(ctx context.Context, attempt *model.ExamAttempt) error {
	attempt.ID = uuid.NewString()
	if _, err := s.attempts.InsertOne(ctx, attempt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateAttempt
		}
		return err
	}
	return nil
}

// GetAttempt returns one attempt owned by the user, or nil.
func (s *Store) GetAttempt(ctx context.Context, userID, attemptID string) (*model.ExamAttempt, error) {
	return s.findAttempt(ctx, bson.M{"_id": attemptID, "userId": userID})
}

// AttemptByIdempotencyKey returns the user's attempt with the given
// idempotency key, or nil.
func (s *Store) AttemptByIdempotencyKey(ctx context.Context, userID, key string) (*model.ExamAttempt, error) {
	return s.findAttempt(ctx, bson.M{"userId": userID, "idempotencyKey": key})
}

func (s *Store) findAttempt(ctx context.Context, filter bson.M) (*model.ExamAttempt, error) {
	var a model.ExamAttempt
	err := s.attempts.FindOne(ctx, filter).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttempts returns all of a user's attempts, newest first.
func (s *Store) ListAttempts(ctx context.Context, userID string) ([]model.ExamAttempt, error) {
	cursor, err := s.attempts.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attempts []model.ExamAttempt
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// SeenQuestionTexts returns the distinct question texts from a user's
// past attempts, used to avoid repeating questions. An empty examID
// covers all of the user's attempts.
func (s *Store) SeenQuestionTexts(ctx context.Context, userID, examID string) ([]string, error) {
	filter := bson.M{"userId": userID}
	if examID != "" {
		filter["examId"] = examID
	}
	raw, err := s.attempts.Distinct(ctx, "questions.questionText", filter)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			texts = append(texts, s)
		}
	}
	return texts, nil
}

// IncorrectTopicsForUser aggregates the distinct weak topics across all
// of a user's attempts.
func (s *Store) IncorrectTopicsForUser(ctx context.Context, userID string) ([]string, error) {
	raw, err := s.attempts.Distinct(ctx, "incorrectlyAnsweredTopics", bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			topics = append(topics, s)
		}
	}
	return topics, nil
}
