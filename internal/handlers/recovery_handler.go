package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/models"
	"github.com/toolbench/portal/internal/session"
)

// RecoveryService is the interface that wraps the forgot-password flow.
type RecoveryService interface {
	// SubmitEmail starts recovery and returns the account's security questions.
	SubmitEmail(ctx context.Context, sess *session.Session, email string) ([2]string, error)
	// SubmitAnswers verifies the answers and emails a verification code.
	SubmitAnswers(ctx context.Context, sess *session.Session, answer1, answer2 string) error
	// VerifyCode checks the submitted code against the one issued to the session.
	VerifyCode(sess *session.Session, code string) error
	// ResetPassword stores a new password and returns the session to home.
	ResetPassword(ctx context.Context, sess *session.Session, newPassword, confirmPassword string) error
}

// RecoveryHandler handles HTTP requests for the forgot-password flow
type RecoveryHandler struct {
	BaseHandler
	service RecoveryService
}

// NewRecoveryHandler creates a new recovery handler
func NewRecoveryHandler(svc RecoveryService, logger *zap.Logger) *RecoveryHandler {
	return &RecoveryHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all recovery handler routes
func (h *RecoveryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/recovery", func(r chi.Router) {
		r.Post("/email", h.SubmitEmail)
		r.Post("/answers", h.SubmitAnswers)
		r.Post("/verify", h.VerifyCode)
		r.Post("/reset", h.ResetPassword)
	})
}

// SubmitEmail handles POST /api/v1/recovery/email
// @Summary Start password recovery
// @Description Look up the email and return its two security questions
// @Tags recovery
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/v1/recovery/email [post]
func (h *RecoveryHandler) SubmitEmail(w http.ResponseWriter, r *http.Request) {
	var req models.RecoveryEmailRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, _ := session.FromContext(r.Context())
	questions, err := h.service.SubmitEmail(r.Context(), sess, req.Email)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"page":               string(sess.Page()),
		"security_questions": questions[:],
	})
}

// SubmitAnswers handles POST /api/v1/recovery/answers
// @Summary Submit security answers
// @Description Verify the answers; on success a 4-digit code is emailed and the session moves to verify_code
// @Tags recovery
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/recovery/answers [post]
func (h *RecoveryHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req models.RecoveryAnswersRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, _ := session.FromContext(r.Context())
	if err := h.service.SubmitAnswers(r.Context(), sess, req.Answer1, req.Answer2); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "verification code sent",
		"page":    string(sess.Page()),
	})
}

// VerifyCode handles POST /api/v1/recovery/verify
// @Summary Verify the emailed code
// @Description A matching code is consumed and moves the session to reset_password
// @Tags recovery
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/recovery/verify [post]
func (h *RecoveryHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, _ := session.FromContext(r.Context())
	if err := h.service.VerifyCode(sess, req.Code); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"page": string(sess.Page()),
	})
}

// ResetPassword handles POST /api/v1/recovery/reset
// @Summary Set a new password
// @Description Store the new password for the recovered account and return the session to home
// @Tags recovery
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/recovery/reset [post]
func (h *RecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, _ := session.FromContext(r.Context())
	if err := h.service.ResetPassword(r.Context(), sess, req.NewPassword, req.ConfirmPassword); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "password updated, please log in",
		"page":    string(sess.Page()),
	})
}
