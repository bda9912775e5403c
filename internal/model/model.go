package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a regular student account.
	UserRoleStudent UserRole = "student"
	// UserRoleAdmin can author gallery items and scheduled exams.
	UserRoleAdmin UserRole = "admin"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	DisplayName  string    `json:"displayName" bson:"displayName"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	Role         UserRole  `json:"role" bson:"role"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionTrueFalse      QuestionType = "trueFalse"
	QuestionFreeText       QuestionType = "freeText"
)

// IsObjective reports whether questions of this type are graded by
// exact string match rather than model judgment.
func (t QuestionType) IsObjective() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

// Question is a single generated exam question together with the
// student's answer. Once an attempt is graded, the question and the
// answer are persisted verbatim and never mutated.
type Question struct {
	QuestionID     string       `json:"questionId" bson:"questionId"`
	QuestionType   QuestionType `json:"questionType" bson:"questionType"`
	QuestionText   string       `json:"questionText" bson:"questionText"`
	Options        []string     `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswer  string       `json:"correctAnswer" bson:"correctAnswer"`
	PointsPossible int          `json:"pointsPossible" bson:"pointsPossible"`
	Topic          string       `json:"topic,omitempty" bson:"topic,omitempty"`
	StudentAnswer  string       `json:"studentAnswer" bson:"studentAnswer"`
}

// Student identifies the exam taker.
type Student struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Exam is a named collection of questions for one student. Exams are
// assembled after generation and only persisted once graded, as part
// of an ExamAttempt.
type Exam struct {
	ExamID    string     `json:"examId" bson:"examId"`
	ExamName  string     `json:"examName" bson:"examName"`
	Student   Student    `json:"student" bson:"student"`
	Questions []Question `json:"questions" bson:"questions"`
}

// GradingResult is the objective grading outcome for one question.
type GradingResult struct {
	QuestionID    string `json:"questionId" bson:"questionId"`
	IsCorrect     bool   `json:"isCorrect" bson:"isCorrect"`
	PointsAwarded int    `json:"pointsAwarded" bson:"pointsAwarded"`
	Feedback      string `json:"feedback" bson:"feedback"`
}

// FlaggedAnswer is the model's judgment of one free-text answer.
type FlaggedAnswer struct {
	QuestionID             string `json:"questionId" bson:"questionId"`
	IsPotentiallyIncorrect bool   `json:"isPotentiallyIncorrect" bson:"isPotentiallyIncorrect"`
	Reason                 string `json:"reason" bson:"reason"`
}

// AIGradingState is the complete grading outcome for one attempt,
// derived once by the grading pipeline and never mutated.
type AIGradingState struct {
	ObjectiveResults    []GradingResult `json:"objectiveResults" bson:"objectiveResults"`
	FlaggedAnswers      []FlaggedAnswer `json:"flaggedAnswers" bson:"flaggedAnswers"`
	Summary             string          `json:"summary" bson:"summary"`
	TotalPointsAwarded  int             `json:"totalPointsAwarded" bson:"totalPointsAwarded"`
	TotalPointsPossible int             `json:"totalPointsPossible" bson:"totalPointsPossible"`
}

// ExamAttempt is one submitted and graded exam, owned by a user.
// Attempts are append-only and immutable.
type ExamAttempt struct {
	ID                        string         `json:"id" bson:"_id,omitempty"`
	UserID                    string         `json:"userId" bson:"userId"`
	ExamID                    string         `json:"examId" bson:"examId"`
	ExamName                  string         `json:"examName" bson:"examName"`
	IdempotencyKey            string         `json:"-" bson:"idempotencyKey,omitempty"`
	Questions                 []Question     `json:"questions" bson:"questions"`
	AIGradingState            AIGradingState `json:"aiGradingState" bson:"aiGradingState"`
	IncorrectlyAnsweredTopics []string       `json:"incorrectlyAnsweredTopics" bson:"incorrectlyAnsweredTopics"`
	CreatedAt                 time.Time      `json:"createdAt" bson:"createdAt"`
}

// ScorePercentage returns the attempt's score as a percentage, or 0
// when no points were possible.
func (a *ExamAttempt) ScorePercentage() float64 {
	g := a.AIGradingState
	if g.TotalPointsPossible == 0 {
		return 0
	}
	return float64(g.TotalPointsAwarded) / float64(g.TotalPointsPossible) * 100
}

// TopicStatus tracks one syllabus topic for a user.
type TopicStatus string

const (
	TopicPending   TopicStatus = "Pending"
	TopicCompleted TopicStatus = "Completed"
	TopicRevision  TopicStatus = "Revision"
)

// ValidTopicStatus reports whether s is a known status value.
func ValidTopicStatus(s TopicStatus) bool {
	switch s {
	case TopicPending, TopicCompleted, TopicRevision:
		return true
	}
	return false
}

// SyllabusProgress maps topic identifiers (paper id + topic text) to
// their status for one user and exam. Updates are merged into the
// stored document; keys absent from an update are preserved.
type SyllabusProgress struct {
	TopicStatus map[string]TopicStatus `json:"topicStatus" bson:"topicStatus"`
}

// CompletionPercentage returns the share of topics marked Completed
// out of total, for the given total topic count.
func (p *SyllabusProgress) CompletionPercentage(totalTopics int) float64 {
	if p == nil || totalTopics == 0 {
		return 0
	}
	completed := 0
	for _, st := range p.TopicStatus {
		if st == TopicCompleted {
			completed++
		}
	}
	return float64(completed) / float64(totalTopics) * 100
}

// RevisionTopics returns the topic ids currently marked for revision.
func (p *SyllabusProgress) RevisionTopics() []string {
	if p == nil {
		return nil
	}
	var topics []string
	for id, st := range p.TopicStatus {
		if st == TopicRevision {
			topics = append(topics, id)
		}
	}
	return topics
}

// GalleryItem is an admin-authored achievement entry. Append-only.
type GalleryItem struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	StudentName string    `json:"studentName" bson:"studentName"`
	Achievement string    `json:"achievement" bson:"achievement"`
	PhotoURL    string    `json:"photoURL" bson:"photoURL"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// ScheduledExam is a shared weekly exam authored by an admin for a
// catalog exam.
type ScheduledExam struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	ExamID    string     `json:"examId" bson:"examId"`
	ExamName  string     `json:"examName" bson:"examName"`
	Questions []Question `json:"questions" bson:"questions"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
}

// Config holds runtime server parameters set via CLI flags.
type Config struct {
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	UploadsDir    string // Directory backing the gallery image store
	PublicBaseURL string // Base URL used when building uploaded image URLs
}
