package http

import (
	"encoding/json"
	"net/http"

	"github.com/pulsevideo/pulse/internal/domain"
)

type AdminHandlers struct {
	authSvc AuthService
}

func NewAdminHandlers(authSvc AuthService) *AdminHandlers {
	return &AdminHandlers{authSvc: authSvc}
}

func (h *AdminHandlers) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		users, err := h.authSvc.ListUsers(r.Context(), user.TenantID)
		if err != nil {
			writeError(w, err)
			return
		}
		if users == nil {
			users = []*domain.User{}
		}
		writeJSON(w, http.StatusOK, map[string][]*domain.User{"users": users})
	}
}

func (h *AdminHandlers) ChangeRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !domain.ValidRole(req.Role) {
			writeMessage(w, http.StatusBadRequest, "invalid role")
			return
		}

		updated, err := h.authSvc.ChangeRole(r.Context(), user.TenantID, r.PathValue("id"), domain.Role(req.Role))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]*domain.User{"user": updated})
	}
}

func (h *AdminHandlers) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		if err := h.authSvc.DeleteUser(r.Context(), user, r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
