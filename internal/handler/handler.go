// Package handler implements the HTTP API: authentication, exam
// generation and submission, syllabus progress, the communication
// coach, and the achievement gallery.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gethub-app/gethub/internal/flows"
	appI18n "github.com/gethub-app/gethub/internal/i18n"
	"github.com/gethub-app/gethub/internal/llm"
	"github.com/gethub-app/gethub/internal/model"
	"github.com/gethub-app/gethub/internal/store"
)

// Store is the persistence surface the handlers use, implemented by
// *store.Store.
type Store interface {
	CreateUser(ctx context.Context, u model.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ToggleUserActive(ctx context.Context, id string) error

	CreateAuthSession(ctx context.Context, userID string) (string, error)
	GetAuthSession(ctx context.Context, token string) (*model.AuthSession, error)
	DeleteAuthSession(ctx context.Context, token string) error

	GetAttempt(ctx context.Context, userID, attemptID string) (*model.ExamAttempt, error)
	ListAttempts(ctx context.Context, userID string) ([]model.ExamAttempt, error)
	SeenQuestionTexts(ctx context.Context, userID, examID string) ([]string, error)
	IncorrectTopicsForUser(ctx context.Context, userID string) ([]string, error)

	GetSyllabusProgress(ctx context.Context, userID, examID string) (*model.SyllabusProgress, error)
	AllSyllabusProgress(ctx context.Context, userID string) (map[string]*model.SyllabusProgress, error)
	MergeSyllabusProgress(ctx context.Context, userID, examID string, updates map[string]model.TopicStatus) error

	CreateGalleryItem(ctx context.Context, item *model.GalleryItem) error
	ListGalleryItems(ctx context.Context) ([]model.GalleryItem, error)

	CreateScheduledExam(ctx context.Context, exam *model.ScheduledExam) error
	LatestScheduledExam(ctx context.Context, examID string) (*model.ScheduledExam, error)
	ListScheduledExams(ctx context.Context) ([]model.ScheduledExam, error)
}

// Grader grades a submitted exam and persists the attempt.
type Grader interface {
	Grade(ctx context.Context, exam *model.Exam, userID, idemKey string) (*model.ExamAttempt, error)
}

// BlobStore stores uploaded images and returns their public URLs.
type BlobStore interface {
	Put(filename string, r io.Reader) (string, error)
	Dir() string
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    Store
	provider llm.Provider
	speech   llm.SpeechProvider
	grader   Grader
	blobs    BlobStore
	config   model.Config
}

// New creates a new Handler.
func New(s Store, provider llm.Provider, speech llm.SpeechProvider, grader Grader, blobs BlobStore, cfg model.Config) *Handler {
	return &Handler{
		store:    s,
		provider: provider,
		speech:   speech,
		grader:   grader,
		blobs:    blobs,
		config:   cfg,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/logout", h.handleLogout)

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.blobs.Dir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/auth/me", h.handleMe)

		r.Get("/api/catalog", h.handleCatalog)
		r.Get("/api/catalog/{examID}", h.handleCatalogExam)

		r.Post("/api/exams/generate", h.handleGenerateExam)
		r.Post("/api/attempts", h.handleSubmitAttempt)
		r.Get("/api/attempts", h.handleListAttempts)
		r.Get("/api/attempts/{attemptID}", h.handleGetAttempt)
		r.Get("/api/suggestions", h.handleSuggestions)

		r.Get("/api/syllabus/progress", h.handleAllProgress)
		r.Get("/api/syllabus/{examID}/progress", h.handleGetProgress)
		r.Patch("/api/syllabus/{examID}/progress", h.handlePatchProgress)
		r.Post("/api/syllabus/{examID}/notes", h.handleNotes)

		r.Post("/api/coach/reply", h.handleCoachReply)
		r.Post("/api/coach/speech", h.handleCoachSpeech)

		r.Get("/api/gallery", h.handleListGallery)
		r.Get("/api/scheduled", h.handleListScheduled)
		r.Get("/api/scheduled/{examID}", h.handleLatestScheduled)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin))
			r.Post("/api/gallery", h.handleCreateGallery)
			r.Post("/api/scheduled", h.handleCreateScheduled)
			r.Get("/api/admin/users", h.handleListUsers)
			r.Post("/api/admin/users/{userID}/toggle", h.handleToggleUser)
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError writes a localized error message for the given i18n id.
func respondError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	respondJSON(w, status, errorResponse{Error: appI18n.T(r.Context(), msgID)})
}

// respondFlowError maps errors from the generation layer onto HTTP
// statuses and localized messages.
func respondFlowError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *flows.ValidationError
	if errors.As(err, &verr) {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	var rerr *llm.ErrRateLimit
	if errors.As(err, &rerr) {
		slog.Warn("rate limited by model provider", "error", err)
		respondError(w, r, http.StatusTooManyRequests, "RateLimited")
		return
	}

	if errors.Is(err, store.ErrDuplicateAttempt) {
		respondError(w, r, http.StatusConflict, "DuplicateSubmission")
		return
	}

	var gerr *flows.GenerationError
	if errors.As(err, &gerr) {
		slog.Error("generation failed", "op", gerr.Op, "error", err)
		respondError(w, r, http.StatusBadGateway, "GenerationFailed")
		return
	}

	slog.Error("request failed", "error", err)
	respondError(w, r, http.StatusInternalServerError, "ServerError")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return false
	}
	return true
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
