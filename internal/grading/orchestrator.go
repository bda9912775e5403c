// Package grading runs the full grading pipeline for one submitted
// exam: deterministic objective grading, concurrent model review of
// free-text answers, weak-topic extraction, a performance summary, and
// a single atomic persist of the resulting attempt.
package grading

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gethub-app/gethub/internal/flows"
	"github.com/gethub-app/gethub/internal/llm"
	"github.com/gethub-app/gethub/internal/model"
)

// maxConcurrentFlags bounds the fan-out of free-text reviews per attempt.
const maxConcurrentFlags = 5

// AttemptStore is the persistence surface the grader needs.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *model.ExamAttempt) error
	AttemptByIdempotencyKey(ctx context.Context, userID, key string) (*model.ExamAttempt, error)
}

// Grader grades submitted exams and persists the outcome.
type Grader struct {
	provider llm.Provider
	attempts AttemptStore
	logger   *slog.Logger
}

// New creates a Grader.
func New(provider llm.Provider, attempts AttemptStore, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{provider: provider, attempts: attempts, logger: logger}
}

// Grade runs the grading pipeline for one submitted exam and persists
// the attempt. Nothing is persisted unless every stage succeeds, so a
// failed submission can be retried without leaving a partial record.
// When idemKey is non-empty and an attempt with the same key already
// exists for the user, that attempt is returned unchanged.
func (g *Grader) Grade(ctx context.Context, exam *model.Exam, userID, idemKey string) (*model.ExamAttempt, error) {
	if len(exam.Questions) == 0 {
		return nil, fmt.Errorf("exam has no questions")
	}

	if idemKey != "" {
		existing, err := g.attempts.AttemptByIdempotencyKey(ctx, userID, idemKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
		if existing != nil {
			g.logger.Info("returning existing attempt for idempotency key",
				"userId", userID, "attemptId", existing.ID)
			return existing, nil
		}
	}

	var objective []flows.ObjectiveQuestion
	var freeText []model.Question
	for _, q := range exam.Questions {
		if q.QuestionType.IsObjective() {
			objective = append(objective, flows.ObjectiveQuestion{
				QuestionID:     q.QuestionID,
				QuestionType:   q.QuestionType,
				QuestionText:   q.QuestionText,
				CorrectAnswer:  q.CorrectAnswer,
				StudentAnswer:  q.StudentAnswer,
				PointsPossible: q.PointsPossible,
			})
		} else {
			freeText = append(freeText, q)
		}
	}

	graded, err := flows.AutoGradeObjective(flows.ObjectiveGradingInput{Questions: objective})
	if err != nil {
		return nil, fmt.Errorf("objective grading: %w", err)
	}

	flagged, err := g.flagFreeText(ctx, freeText)
	if err != nil {
		return nil, err
	}

	state := model.AIGradingState{
		ObjectiveResults:    graded.Results,
		FlaggedAnswers:      flagged,
		TotalPointsAwarded:  graded.TotalPointsAwarded,
		TotalPointsPossible: graded.TotalPointsPossible,
	}
	// Free-text questions count toward the possible total only. The
	// flag review never awards points, so the awarded total is the
	// objective grading total.
	for _, q := range freeText {
		state.TotalPointsPossible += q.PointsPossible
	}

	summary, err := flows.GenerateExamSummary(ctx, g.provider, flows.ExamSummaryInput{
		StudentName: exam.Student.Name,
		ExamName:    exam.ExamName,
		Questions:   buildSummaryQuestions(exam.Questions, state),
	})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	state.Summary = summary.Summary

	attempt := &model.ExamAttempt{
		UserID:                    userID,
		ExamID:                    exam.ExamID,
		ExamName:                  exam.ExamName,
		IdempotencyKey:            idemKey,
		Questions:                 exam.Questions,
		AIGradingState:            state,
		IncorrectlyAnsweredTopics: incorrectTopics(exam.Questions, state),
		CreatedAt:                 time.Now().UTC(),
	}

	if err := g.attempts.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}

	g.logger.Info("graded exam attempt",
		"userId", userID,
		"examId", exam.ExamID,
		"attemptId", attempt.ID,
		"score", fmt.Sprintf("%d/%d", state.TotalPointsAwarded, state.TotalPointsPossible))
	return attempt, nil
}

// flagFreeText reviews every free-text answer concurrently. One review
// failure fails the whole grading run.
func (g *Grader) flagFreeText(ctx context.Context, questions []model.Question) ([]model.FlaggedAnswer, error) {
	flagged := make([]model.FlaggedAnswer, len(questions))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFlags)
	for i, q := range questions {
		eg.Go(func() error {
			out, err := flows.FlagAnswer(ctx, g.provider, flows.FlagAnswerInput{
				Question:      q.QuestionText,
				StudentAnswer: q.StudentAnswer,
				CorrectAnswer: q.CorrectAnswer,
			})
			if err != nil {
				return fmt.Errorf("flag answer %s: %w", q.QuestionID, err)
			}
			flagged[i] = model.FlaggedAnswer{
				QuestionID:             q.QuestionID,
				IsPotentiallyIncorrect: out.IsPotentiallyIncorrect,
				Reason:                 out.Reason,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if flagged == nil {
		flagged = []model.FlaggedAnswer{}
	}
	return flagged, nil
}

// buildSummaryQuestions merges grading and flagging outcomes into the
// per-question view the summary prompt expects.
func buildSummaryQuestions(questions []model.Question, state model.AIGradingState) []flows.SummaryQuestion {
	results := make(map[string]model.GradingResult, len(state.ObjectiveResults))
	for _, r := range state.ObjectiveResults {
		results[r.QuestionID] = r
	}
	flags := make(map[string]model.FlaggedAnswer, len(state.FlaggedAnswers))
	for _, f := range state.FlaggedAnswers {
		flags[f.QuestionID] = f
	}

	out := make([]flows.SummaryQuestion, 0, len(questions))
	for _, q := range questions {
		sq := flows.SummaryQuestion{
			QuestionText:  q.QuestionText,
			StudentAnswer: q.StudentAnswer,
		}
		if r, ok := results[q.QuestionID]; ok {
			sq.IsCorrect = r.IsCorrect
			sq.Feedback = r.Feedback
		} else if f, ok := flags[q.QuestionID]; ok {
			sq.IsCorrect = !f.IsPotentiallyIncorrect
			sq.Feedback = f.Reason
		}
		out = append(out, sq)
	}
	return out
}

// incorrectTopics collects the topics of missed questions: objective
// questions graded incorrect and free-text answers flagged as
// potentially incorrect. Topics are deduplicated and sorted.
func incorrectTopics(questions []model.Question, state model.AIGradingState) []string {
	missed := make(map[string]bool)
	for _, r := range state.ObjectiveResults {
		if !r.IsCorrect {
			missed[r.QuestionID] = true
		}
	}
	for _, f := range state.FlaggedAnswers {
		if f.IsPotentiallyIncorrect {
			missed[f.QuestionID] = true
		}
	}

	seen := make(map[string]bool)
	var topics []string
	for _, q := range questions {
		if !missed[q.QuestionID] || q.Topic == "" || seen[q.Topic] {
			continue
		}
		seen[q.Topic] = true
		topics = append(topics, q.Topic)
	}
	sort.Strings(topics)
	if topics == nil {
		topics = []string{}
	}
	return topics
}
