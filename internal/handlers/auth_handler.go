package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/middlewares"
	"github.com/toolbench/portal/internal/models"
	"github.com/toolbench/portal/internal/session"
)

// AuthService is the interface that wraps registration and login business logic.
type AuthService interface {
	// Register creates a new user account. A username or email already in use
	// fails with models.ErrDuplicate; field problems with models.ErrMissingFields
	// or models.ErrValidation.
	Register(ctx context.Context, req *models.RegisterRequest) error
	// Login authenticates by username and password. Unknown usernames and wrong
	// passwords both fail with models.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)
}

// AuthHandler handles HTTP requests for registration, login and logout
type AuthHandler struct {
	BaseHandler
	service  AuthService
	sessions *session.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
		sessions:    sessions,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})
}

// Register handles POST /api/v1/auth/register
// @Summary Register a new account
// @Description Create a user account; a moderator role additionally requires the verification code
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The submission implies the client sits on the register form; sessions
	// whose page may not open it are turned away before the account exists.
	sess, _ := session.FromContext(r.Context())
	if err := sess.OpenRegister(); err != nil {
		h.respondServiceError(w, err)
		return
	}

	if err := h.service.Register(r.Context(), &req); err != nil {
		h.respondServiceError(w, err)
		return
	}

	if err := sess.RegistrationDone(); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]string{
		"message": "registration successful, please log in",
		"page":    string(sess.Page()),
	})
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Authenticate by username and password and move the session to the application page
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	sess, _ := session.FromContext(r.Context())
	identity := session.Identity{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Role:      user.Role,
	}
	if err := sess.SignIn(identity); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("session_id", sess.ID),
	)

	h.respondJSON(w, http.StatusOK, map[string]any{
		"page":     string(sess.Page()),
		"identity": identity,
	})
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Destroy the session; any in-progress recovery ticket or code dies with it
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	h.sessions.Delete(sess.ID)
	http.SetCookie(w, middlewares.ExpiredSessionCookie())

	h.respondJSON(w, http.StatusOK, map[string]string{
		"page": string(session.PageHome),
	})
}
