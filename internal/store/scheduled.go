package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gethub-app/gethub/internal/model"
)

// CreateScheduledExam stores an admin-authored weekly exam.
func (s *Store) CreateScheduledExam(ctx context.Context, exam *model.ScheduledExam) error {
	exam.ID = uuid.NewString()
	exam.CreatedAt = time.Now().UTC()
	_, err := s.scheduled.InsertOne(ctx, exam)
	return err
}

// LatestScheduledExam returns the most recent scheduled exam for a
// catalog exam, or nil when none exists.
func (s *Store) LatestScheduledExam(ctx context.Context, examID string) (*model.ScheduledExam, error) {
	var exam model.ScheduledExam
	err := s.scheduled.FindOne(ctx, bson.M{"examId": examID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&exam)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListScheduledExams returns all scheduled exams, newest first.
func (s *Store) ListScheduledExams(ctx context.Context) ([]model.ScheduledExam, error) {
	cursor, err := s.scheduled.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exams []model.ScheduledExam
	if err := cursor.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}
