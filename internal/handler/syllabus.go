package handler

import (
	"log/slog"
	"net/http"

	"github.com/gethub-app/gethub/internal/catalog"
	"github.com/gethub-app/gethub/internal/flows"
	"github.com/gethub-app/gethub/internal/model"
)

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.Categories())
}

func (h *Handler) handleCatalogExam(w http.ResponseWriter, r *http.Request) {
	exam := catalog.FindExam(urlParam(r, "examID"))
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "NotFound")
		return
	}
	respondJSON(w, http.StatusOK, exam)
}

type progressResponse struct {
	ExamID               string                       `json:"examId"`
	TopicStatus          map[string]model.TopicStatus `json:"topicStatus"`
	CompletionPercentage float64                      `json:"completionPercentage"`
	RevisionTopics       []string                     `json:"revisionTopics"`
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	examID := urlParam(r, "examID")

	exam := catalog.FindExam(examID)
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "NotFound")
		return
	}

	progress, err := h.store.GetSyllabusProgress(r.Context(), user.ID, examID)
	if err != nil {
		slog.Error("failed to get syllabus progress", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}

	revision := progress.RevisionTopics()
	if revision == nil {
		revision = []string{}
	}
	respondJSON(w, http.StatusOK, progressResponse{
		ExamID:               examID,
		TopicStatus:          progress.TopicStatus,
		CompletionPercentage: progress.CompletionPercentage(exam.TotalTopics()),
		RevisionTopics:       revision,
	})
}

// handleAllProgress returns the user's progress across every exam they
// have touched, for the dashboard overview.
func (h *Handler) handleAllProgress(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	all, err := h.store.AllSyllabusProgress(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to load syllabus progress", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}

	out := make([]progressResponse, 0, len(all))
	for examID, progress := range all {
		exam := catalog.FindExam(examID)
		if exam == nil {
			continue
		}
		revision := progress.RevisionTopics()
		if revision == nil {
			revision = []string{}
		}
		out = append(out, progressResponse{
			ExamID:               examID,
			TopicStatus:          progress.TopicStatus,
			CompletionPercentage: progress.CompletionPercentage(exam.TotalTopics()),
			RevisionTopics:       revision,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type patchProgressRequest struct {
	TopicStatus map[string]model.TopicStatus `json:"topicStatus"`
}

func (h *Handler) handlePatchProgress(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	examID := urlParam(r, "examID")

	exam := catalog.FindExam(examID)
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "NotFound")
		return
	}

	var req patchProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.TopicStatus) == 0 {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	for topicID, status := range req.TopicStatus {
		if !model.ValidTopicStatus(status) || exam.TopicByID(topicID) == "" {
			respondError(w, r, http.StatusBadRequest, "InvalidRequest")
			return
		}
	}

	if err := h.store.MergeSyllabusProgress(r.Context(), user.ID, examID, req.TopicStatus); err != nil {
		slog.Error("failed to merge syllabus progress", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}

	h.handleGetProgress(w, r)
}

type notesRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) handleNotes(w http.ResponseWriter, r *http.Request) {
	exam := catalog.FindExam(urlParam(r, "examID"))
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "NotFound")
		return
	}

	var req notesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := flows.GenerateSyllabusNotes(r.Context(), h.provider, flows.SyllabusNotesInput{
		ExamName: exam.Name,
		Topic:    req.Topic,
	})
	if err != nil {
		respondFlowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
