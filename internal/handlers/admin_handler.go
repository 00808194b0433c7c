package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/middlewares"
	"github.com/toolbench/portal/internal/models"
)

// AdminService is the interface that wraps the moderator user-database view.
type AdminService interface {
	// ListUsers returns every user, password hashes included.
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
	// ExportCSV writes the user table as CSV.
	ExportCSV(ctx context.Context, w io.Writer) error
}

// AdminHandler handles HTTP requests for the moderator user database
type AdminHandler struct {
	BaseHandler
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all admin handler routes behind the moderator gate
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middlewares.RequireModerator)
		r.Get("/", h.ListUsers)
		r.Get("/export", h.ExportCSV)
	})
}

// ListUsers handles GET /api/v1/users
// @Summary List all users
// @Description Full credential table in its moderator view, password hashes included
// @Tags users
// @Produce json
// @Success 200 {array} models.UserListItem
// @Failure 403 {object} map[string]string
// @Router /api/v1/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.respondJSON(w, http.StatusOK, users)
}

// ExportCSV handles GET /api/v1/users/export
// @Summary Download the user database
// @Description User table as a CSV attachment
// @Tags users
// @Produce text/csv
// @Success 200 {string} string
// @Failure 403 {object} map[string]string
// @Router /api/v1/users/export [get]
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)

	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.Error("failed to export users", zap.Error(err))
	}
}
