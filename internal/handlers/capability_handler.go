package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/capabilities"
	"github.com/toolbench/portal/internal/middlewares"
	"github.com/toolbench/portal/internal/models"
	"github.com/toolbench/portal/internal/session"
)

// CapabilityRegistry is the interface that wraps the workbench capability set.
type CapabilityRegistry interface {
	// List returns the capabilities visible to the role.
	List(role models.Role) []capabilities.Descriptor
	// Run executes one capability on the given input.
	Run(ctx context.Context, name capabilities.Name, role models.Role, input []byte) (capabilities.Result, error)
}

// CapabilityHandler handles HTTP requests for the workbench behind login
type CapabilityHandler struct {
	BaseHandler
	registry CapabilityRegistry
}

// NewCapabilityHandler creates a new capability handler
func NewCapabilityHandler(registry CapabilityRegistry, logger *zap.Logger) *CapabilityHandler {
	return &CapabilityHandler{
		BaseHandler: BaseHandler{logger: logger},
		registry:    registry,
	}
}

// RegisterRoutes registers all capability handler routes behind the login gate
func (h *CapabilityHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/capabilities", func(r chi.Router) {
		r.Use(middlewares.RequireIdentity)
		r.Get("/", h.List)
		r.Post("/{name}", h.Run)
	})
}

// List handles GET /api/v1/capabilities
// @Summary List capabilities
// @Description Capabilities visible to the logged-in role; the user database only shows for moderators
// @Tags capabilities
// @Produce json
// @Success 200 {array} capabilities.Descriptor
// @Failure 401 {object} map[string]string
// @Router /api/v1/capabilities [get]
func (h *CapabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	h.respondJSON(w, http.StatusOK, h.registry.List(sess.Identity().Role))
}

// Run handles POST /api/v1/capabilities/{name}
// @Summary Run a capability
// @Description Execute one capability on the posted input bytes and return its result
// @Tags capabilities
// @Accept octet-stream
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/capabilities/{name} [post]
func (h *CapabilityHandler) Run(w http.ResponseWriter, r *http.Request) {
	name, err := capabilities.ParseName(chi.URLParam(r, "name"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	input, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	sess, _ := session.FromContext(r.Context())
	result, err := h.registry.Run(r.Context(), name, sess.Identity().Role, input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Body)
}
