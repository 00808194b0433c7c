package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/capabilities"
	"github.com/toolbench/portal/internal/models"
	"github.com/toolbench/portal/internal/session"
)

type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondServiceError maps the service error kinds to HTTP statuses. Anything
// not matching a known kind is a 500 and gets logged; known kinds surface
// their message as the inline error the page renders.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrMissingFields):
		h.respondError(w, http.StatusBadRequest, "all fields are required")
	case errors.Is(err, models.ErrValidation):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrDuplicate):
		h.respondError(w, http.StatusConflict, "username or email already registered")
	case errors.Is(err, models.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, models.ErrInvalidCode):
		h.respondError(w, http.StatusBadRequest, "invalid verification code")
	case errors.Is(err, models.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "no account registered with this email")
	case errors.Is(err, models.ErrDeliveryFailure):
		h.respondError(w, http.StatusBadGateway, "could not deliver the verification code")
	case errors.Is(err, models.ErrForbidden):
		h.respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, session.ErrInvalidTransition):
		h.respondError(w, http.StatusConflict, "action not allowed from the current page")
	case errors.Is(err, capabilities.ErrUnknownCapability):
		h.respondError(w, http.StatusNotFound, "unknown capability")
	case errors.Is(err, capabilities.ErrNotConfigured):
		h.respondError(w, http.StatusServiceUnavailable, "capability backend not configured")
	default:
		h.logger.Error("unexpected service error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses a request body into dst
func (h *BaseHandler) decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
