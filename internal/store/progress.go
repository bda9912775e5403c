package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gethub-app/gethub/internal/model"
)

type progressDoc struct {
	UserID      string                       `bson:"userId"`
	ExamID      string                       `bson:"examId"`
	TopicStatus map[string]model.TopicStatus `bson:"topicStatus"`
}

// GetSyllabusProgress returns the user's progress for one exam. A user
// who never recorded progress gets an empty map, not nil.
func (s *Store) GetSyllabusProgress(ctx context.Context, userID, examID string) (*model.SyllabusProgress, error) {
	var doc progressDoc
	err := s.progress.FindOne(ctx, bson.M{"userId": userID, "examId": examID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &model.SyllabusProgress{TopicStatus: map[string]model.TopicStatus{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.TopicStatus == nil {
		doc.TopicStatus = map[string]model.TopicStatus{}
	}
	return &model.SyllabusProgress{TopicStatus: doc.TopicStatus}, nil
}

// AllSyllabusProgress returns the user's progress for every exam keyed
// by exam id.
func (s *Store) AllSyllabusProgress(ctx context.Context, userID string) (map[string]*model.SyllabusProgress, error) {
	cursor, err := s.progress.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]*model.SyllabusProgress)
	for cursor.Next(ctx) {
		var doc progressDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.TopicStatus == nil {
			doc.TopicStatus = map[string]model.TopicStatus{}
		}
		out[doc.ExamID] = &model.SyllabusProgress{TopicStatus: doc.TopicStatus}
	}
	return out, cursor.Err()
}

// MergeSyllabusProgress merges the given topic statuses into the user's
// stored progress for one exam. Topics absent from updates keep their
// stored status; the document is created on first write.
func (s *Store) MergeSyllabusProgress(ctx context.Context, userID, examID string, updates map[string]model.TopicStatus) error {
	if len(updates) == 0 {
		return nil
	}
	set := bson.M{}
	for topicID, status := range updates {
		set["topicStatus."+topicID] = status
	}
	_, err := s.progress.UpdateOne(ctx,
		bson.M{"userId": userID, "examId": examID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}
