package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gethub-app/gethub/internal/catalog"
	"github.com/gethub-app/gethub/internal/model"
)

const maxGalleryForm = 6 << 20

func (h *Handler) handleListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListGalleryItems(r.Context())
	if err != nil {
		slog.Error("failed to list gallery", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if items == nil {
		items = []model.GalleryItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// handleCreateGallery accepts a multipart form with studentName,
// achievement, and an optional photo file.
func (h *Handler) handleCreateGallery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxGalleryForm); err != nil {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	studentName := strings.TrimSpace(r.FormValue("studentName"))
	achievement := strings.TrimSpace(r.FormValue("achievement"))
	if studentName == "" || achievement == "" {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	var photoURL string
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		photoURL, err = h.blobs.Put(header.Filename, file)
		if err != nil {
			slog.Error("failed to store gallery photo", "error", err)
			respondError(w, r, http.StatusInternalServerError, "ServerError")
			return
		}
	}

	item := &model.GalleryItem{
		StudentName: studentName,
		Achievement: achievement,
		PhotoURL:    photoURL,
	}
	if err := h.store.CreateGalleryItem(r.Context(), item); err != nil {
		slog.Error("failed to create gallery item", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

type createScheduledRequest struct {
	ExamID    string           `json:"examId"`
	ExamName  string           `json:"examName"`
	Questions []model.Question `json:"questions"`
}

func (h *Handler) handleCreateScheduled(w http.ResponseWriter, r *http.Request) {
	var req createScheduledRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if catalog.FindExam(req.ExamID) == nil || len(req.Questions) == 0 {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if req.ExamName == "" {
		req.ExamName = catalog.FindExam(req.ExamID).Name
	}

	exam := &model.ScheduledExam{
		ExamID:    req.ExamID,
		ExamName:  req.ExamName,
		Questions: req.Questions,
	}
	if err := h.store.CreateScheduledExam(r.Context(), exam); err != nil {
		slog.Error("failed to create scheduled exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	respondJSON(w, http.StatusCreated, exam)
}

func (h *Handler) handleListScheduled(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListScheduledExams(r.Context())
	if err != nil {
		slog.Error("failed to list scheduled exams", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if exams == nil {
		exams = []model.ScheduledExam{}
	}
	respondJSON(w, http.StatusOK, exams)
}

func (h *Handler) handleLatestScheduled(w http.ResponseWriter, r *http.Request) {
	exam, err := h.store.LatestScheduledExam(r.Context(), urlParam(r, "examID"))
	if err != nil {
		slog.Error("failed to get scheduled exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "NotFound")
		return
	}
	respondJSON(w, http.StatusOK, exam)
}
