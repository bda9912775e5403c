package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gethub-app/gethub/internal/model"
)

// These tests run against a live MongoDB. Set GETHUB_MONGO_TEST_URI
// (e.g. mongodb://localhost:27017) to enable them; each run uses a
// fresh database that is dropped on cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("GETHUB_MONGO_TEST_URI")
	if uri == "" {
		t.Skip("GETHUB_MONGO_TEST_URI not set")
	}

	dbName := "gethub_test_" + uuid.NewString()[:8]
	s, err := New(context.Background(), uri, dbName)
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func createTestUser(t *testing.T, s *Store, email string) string {
	t.Helper()
	id, err := s.CreateUser(context.Background(), model.User{
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "x",
		Role:         model.UserRoleStudent,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func testAttempt(userID, examID, key string) *model.ExamAttempt {
	return &model.ExamAttempt{
		UserID:         userID,
		ExamID:         examID,
		ExamName:       "UPSC Prelims Practice",
		IdempotencyKey: key,
		Questions: []model.Question{
			{QuestionID: "q1", QuestionType: model.QuestionMultipleChoice, QuestionText: "Capital of France?",
				CorrectAnswer: "Paris", StudentAnswer: "London", PointsPossible: 10, Topic: "Geography"},
		},
		AIGradingState: model.AIGradingState{
			ObjectiveResults: []model.GradingResult{
				{QuestionID: "q1", IsCorrect: false, PointsAwarded: 0, Feedback: "Incorrect. The correct answer is Paris"},
			},
			FlaggedAnswers:      []model.FlaggedAnswer{},
			Summary:             "Needs work on Geography.",
			TotalPointsAwarded:  0,
			TotalPointsPossible: 10,
		},
		IncorrectlyAnsweredTopics: []string{"Geography"},
		CreatedAt:                 time.Now().UTC(),
	}
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := createTestUser(t, s, "Asha@Example.com")

	// Lookup is case-insensitive because emails are stored lowercased.
	u, err := s.GetUserByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("GetUserByEmail returned %+v, want id %s", u, id)
	}
	if u.Email != "asha@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}

	// Duplicate email is rejected.
	_, err = s.CreateUser(ctx, model.User{Email: "asha@example.com", Role: model.UserRoleStudent})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateEmail", err)
	}

	// Unknown user is nil, not an error.
	u, err = s.GetUserByID(ctx, "nope")
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "s@example.com")

	token, err := s.CreateAuthSession(ctx, userID)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	sess, err := s.GetAuthSession(ctx, token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != userID {
		t.Fatalf("session = %+v, want user %s", sess, userID)
	}

	if err := s.DeleteAuthSession(ctx, token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(ctx, token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil session after delete")
	}
}

func TestAttempts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "a@example.com")

	first := testAttempt(userID, "upsc-prelims", "key-1")
	if err := s.CreateAttempt(ctx, first); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	if first.ID == "" {
		t.Fatal("CreateAttempt did not set id")
	}

	// Same idempotency key is rejected by the unique index.
	err := s.CreateAttempt(ctx, testAttempt(userID, "upsc-prelims", "key-1"))
	if !errors.Is(err, ErrDuplicateAttempt) {
		t.Errorf("duplicate attempt error = %v, want ErrDuplicateAttempt", err)
	}

	// Attempts without a key never collide.
	for i := 0; i < 2; i++ {
		if err := s.CreateAttempt(ctx, testAttempt(userID, "ssc-cgl", "")); err != nil {
			t.Fatalf("CreateAttempt without key: %v", err)
		}
	}

	got, err := s.AttemptByIdempotencyKey(ctx, userID, "key-1")
	if err != nil {
		t.Fatalf("AttemptByIdempotencyKey: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Errorf("AttemptByIdempotencyKey = %+v, want id %s", got, first.ID)
	}

	attempts, err := s.ListAttempts(ctx, userID)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(attempts))
	}

	// Attempts are scoped per user.
	other := createTestUser(t, s, "b@example.com")
	attempts, err = s.ListAttempts(ctx, other)
	if err != nil {
		t.Fatalf("ListAttempts other user: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("other user attempts = %d, want 0", len(attempts))
	}
}

func TestSeenQuestionTexts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "c@example.com")

	for i := 0; i < 2; i++ {
		a := testAttempt(userID, "upsc-prelims", fmt.Sprintf("k%d", i))
		if err := s.CreateAttempt(ctx, a); err != nil {
			t.Fatalf("CreateAttempt: %v", err)
		}
	}

	other := testAttempt(userID, "gate-cs", "k2")
	other.Questions[0].QuestionText = "Define a deadlock."
	if err := s.CreateAttempt(ctx, other); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}

	texts, err := s.SeenQuestionTexts(ctx, userID, "upsc-prelims")
	if err != nil {
		t.Fatalf("SeenQuestionTexts: %v", err)
	}
	// The same question across attempts appears once; other exams stay out.
	if len(texts) != 1 || texts[0] != "Capital of France?" {
		t.Errorf("texts = %v, want one distinct question", texts)
	}

	// An empty exam id covers the user's whole history.
	all, err := s.SeenQuestionTexts(ctx, userID, "")
	if err != nil {
		t.Fatalf("SeenQuestionTexts (all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all texts = %v, want questions from both exams", all)
	}
}

func TestMergeSyllabusProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "d@example.com")

	// First write creates the document.
	err := s.MergeSyllabusProgress(ctx, userID, "upsc-prelims",
		map[string]model.TopicStatus{"P1-t1": model.TopicPending})
	if err != nil {
		t.Fatalf("MergeSyllabusProgress: %v", err)
	}

	// Second write merges; the first key must survive.
	err = s.MergeSyllabusProgress(ctx, userID, "upsc-prelims",
		map[string]model.TopicStatus{"P1-t2": model.TopicCompleted})
	if err != nil {
		t.Fatalf("MergeSyllabusProgress second: %v", err)
	}

	p, err := s.GetSyllabusProgress(ctx, userID, "upsc-prelims")
	if err != nil {
		t.Fatalf("GetSyllabusProgress: %v", err)
	}
	if p.TopicStatus["P1-t1"] != model.TopicPending {
		t.Errorf("P1-t1 = %q, want Pending", p.TopicStatus["P1-t1"])
	}
	if p.TopicStatus["P1-t2"] != model.TopicCompleted {
		t.Errorf("P1-t2 = %q, want Completed", p.TopicStatus["P1-t2"])
	}

	// Updating an existing key overwrites just that key.
	err = s.MergeSyllabusProgress(ctx, userID, "upsc-prelims",
		map[string]model.TopicStatus{"P1-t1": model.TopicRevision})
	if err != nil {
		t.Fatalf("MergeSyllabusProgress update: %v", err)
	}
	p, _ = s.GetSyllabusProgress(ctx, userID, "upsc-prelims")
	if p.TopicStatus["P1-t1"] != model.TopicRevision {
		t.Errorf("P1-t1 = %q, want Revision", p.TopicStatus["P1-t1"])
	}
	if len(p.TopicStatus) != 2 {
		t.Errorf("topic count = %d, want 2", len(p.TopicStatus))
	}

	// Unknown user and exam read as empty progress.
	p, err = s.GetSyllabusProgress(ctx, "nobody", "nothing")
	if err != nil {
		t.Fatalf("GetSyllabusProgress empty: %v", err)
	}
	if len(p.TopicStatus) != 0 {
		t.Errorf("expected empty progress, got %v", p.TopicStatus)
	}
}

func TestGalleryAndScheduled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := &model.GalleryItem{StudentName: "Asha", Achievement: "Cleared Prelims", PhotoURL: "/uploads/asha.jpg"}
	if err := s.CreateGalleryItem(ctx, item); err != nil {
		t.Fatalf("CreateGalleryItem: %v", err)
	}
	items, err := s.ListGalleryItems(ctx)
	if err != nil {
		t.Fatalf("ListGalleryItems: %v", err)
	}
	if len(items) != 1 || items[0].StudentName != "Asha" {
		t.Errorf("gallery items = %+v", items)
	}

	exam := &model.ScheduledExam{
		ExamID:   "upsc-prelims",
		ExamName: "Weekly Mock",
		Questions: []model.Question{
			{QuestionID: "q1", QuestionType: model.QuestionTrueFalse, QuestionText: "X?", CorrectAnswer: "True", PointsPossible: 10},
		},
	}
	if err := s.CreateScheduledExam(ctx, exam); err != nil {
		t.Fatalf("CreateScheduledExam: %v", err)
	}

	latest, err := s.LatestScheduledExam(ctx, "upsc-prelims")
	if err != nil {
		t.Fatalf("LatestScheduledExam: %v", err)
	}
	if latest == nil || latest.ID != exam.ID {
		t.Errorf("latest = %+v, want id %s", latest, exam.ID)
	}

	latest, err = s.LatestScheduledExam(ctx, "unknown")
	if err != nil {
		t.Fatalf("LatestScheduledExam unknown: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for unknown exam, got %+v", latest)
	}
}

func TestExportUserAttempts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "e@example.com")

	if err := s.CreateAttempt(ctx, testAttempt(userID, "upsc-prelims", "")); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}

	export, err := s.ExportUserAttempts(ctx, userID)
	if err != nil {
		t.Fatalf("ExportUserAttempts: %v", err)
	}
	if export.Email != "e@example.com" {
		t.Errorf("export email = %q", export.Email)
	}
	if len(export.Attempts) != 1 {
		t.Errorf("export attempts = %d, want 1", len(export.Attempts))
	}

	if _, err := s.ExportUserAttempts(ctx, "missing"); err == nil {
		t.Error("expected error for unknown user")
	}
}
