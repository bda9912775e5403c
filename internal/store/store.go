// Package store persists users, sessions, exam attempts, syllabus
// progress, gallery items, and scheduled exams in MongoDB.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users     *mongo.Collection
	sessions  *mongo.Collection
	attempts  *mongo.Collection
	progress  *mongo.Collection
	gallery   *mongo.Collection
	scheduled *mongo.Collection
}

// New connects to MongoDB and prepares collections and indexes.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:    client,
		db:        db,
		users:     db.Collection("users"),
		sessions:  db.Collection("authSessions"),
		attempts:  db.Collection("examAttempts"),
		progress:  db.Collection("syllabusProgress"),
		gallery:   db.Collection("gallery"),
		scheduled: db.Collection("scheduledExams"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return err
	}

	_, err = s.attempts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			// Duplicate submissions with the same key are rejected at
			// the database level, not just checked in the application.
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.progress.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "examId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
