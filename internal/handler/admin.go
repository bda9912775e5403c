package handler

import (
	"log/slog"
	"net/http"

	"github.com/gethub-app/gethub/internal/model"
)

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "userID")

	// An admin cannot deactivate their own account.
	if user := model.UserFromContext(r.Context()); user != nil && user.ID == id {
		respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	if err := h.store.ToggleUserActive(r.Context(), id); err != nil {
		slog.Error("failed to toggle user active", "id", id, "error", err)
		respondError(w, r, http.StatusInternalServerError, "ServerError")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
