package handler

import (
	"log/slog"
	"net/http"

	"github.com/gethub-app/gethub/internal/catalog"
	"github.com/gethub-app/gethub/internal/flows"
	appI18n "github.com/gethub-app/gethub/internal/i18n"
	"github.com/gethub-app/gethub/internal/model"
)

// idempotencyHeader carries a client-chosen key that makes attempt
// submission safe to retry.
const idempotencyHeader = "Idempotency-Key"

type generateExamRequest struct {
	ExamID       string `json:"examId,omitempty"`
	Topic        string `json:"topic"`
	NumQuestions int    `json:"numQuestions"`
}

func (h *Handler) handleGenerateExam(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	var req generateExamRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	topic := req.Topic
	if topic == "" && req.ExamID != "" {
		if e := catalog.FindExam(req.ExamID); e != nil {
			topic = e.Name
		}
	}

	// Past questions are excluded from generation so repeat practice
	// stays fresh; without an examId the user's whole history counts.
	seen, err := h.store.SeenQuestionTexts(r.Context(), user.ID, req.ExamID)
	if err != nil {
		slog.Error("failed to load seen questions", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}

	out, err := flows.GeneratePracticeExam(r.Context(), h.provider, flows.PracticeExamInput{
		ExamTopic:     topic,
		NumQuestions:  req.NumQuestions,
		SeenQuestions: seen,
	})
	if err != nil {
		respondFlowError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, generateExamResponse{
		Questions: out.Questions,
		Message:   appI18n.Tp(r.Context(), "QuestionsAvailable", len(out.Questions)),
	})
}

type generateExamResponse struct {
	Questions []model.Question `json:"questions"`
	Message   string           `json:"message"`
}

type submitAttemptRequest struct {
	ExamID    string           `json:"examId"`
	ExamName  string           `json:"examName"`
	Questions []model.Question `json:"questions"`
}

func (h *Handler) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	var req submitAttemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Questions) == 0 || req.ExamName == "" {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	exam := &model.Exam{
		ExamID:    req.ExamID,
		ExamName:  req.ExamName,
		Student:   model.Student{ID: user.ID, Name: user.DisplayName},
		Questions: req.Questions,
	}

	attempt, err := h.grader.Grade(r.Context(), exam, user.ID, r.Header.Get(idempotencyHeader))
	if err != nil {
		respondFlowError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, attemptResponse{
		ExamAttempt:  attempt,
		ScoreSummary: scoreSummary(r, attempt),
	})
}

// attemptResponse decorates a persisted attempt with a localized score
// line for display.
type attemptResponse struct {
	*model.ExamAttempt
	ScoreSummary string `json:"scoreSummary"`
}

func scoreSummary(r *http.Request, attempt *model.ExamAttempt) string {
	return appI18n.Td(r.Context(), "ScoreSummary", map[string]any{
		"Awarded":  attempt.AIGradingState.TotalPointsAwarded,
		"Possible": attempt.AIGradingState.TotalPointsPossible,
	})
}

func (h *Handler) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	attempts, err := h.store.ListAttempts(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to list attempts", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if attempts == nil {
		attempts = []model.ExamAttempt{}
	}
	respondJSON(w, http.StatusOK, attempts)
}

func (h *Handler) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	attempt, err := h.store.GetAttempt(r.Context(), user.ID, urlParam(r, "attemptID"))
	if err != nil {
		slog.Error("failed to get attempt", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if attempt == nil {
		respondError(w, r, http.StatusNotFound, "NotFound")
		return
	}
	respondJSON(w, http.StatusOK, attemptResponse{
		ExamAttempt:  attempt,
		ScoreSummary: scoreSummary(r, attempt),
	})
}

type suggestionsResponse struct {
	IncorrectTopics []string `json:"incorrectTopics"`
	Suggestions     string   `json:"suggestions"`
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	topics, err := h.store.IncorrectTopicsForUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to load weak topics", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if len(topics) == 0 {
		respondJSON(w, http.StatusOK, suggestionsResponse{IncorrectTopics: []string{}})
		return
	}

	out, err := flows.GenerateStudySuggestions(r.Context(), h.provider, flows.StudySuggestionsInput{
		IncorrectTopics: topics,
	})
	if err != nil {
		respondFlowError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestionsResponse{
		IncorrectTopics: topics,
		Suggestions:     out.Suggestions,
	})
}
