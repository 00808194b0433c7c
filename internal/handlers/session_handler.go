package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/session"
)

// SessionHandler exposes the session's page state. Clients mirror the page
// into a "page" URL query parameter; on reload they send it back and the
// session adopts it when its payloads permit.
type SessionHandler struct {
	BaseHandler
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *zap.Logger) *SessionHandler {
	return &SessionHandler{BaseHandler: BaseHandler{logger: logger}}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/home", h.ReturnHome)
	})
}

// sessionState is the session view returned to clients
type sessionState struct {
	Page      string            `json:"page"`
	Identity  *session.Identity `json:"identity,omitempty"`
	Questions []string          `json:"security_questions,omitempty"`
}

func (h *SessionHandler) state(sess *session.Session) sessionState {
	state := sessionState{
		Page:     string(sess.Page()),
		Identity: sess.Identity(),
	}
	if questions, ok := sess.RecoveryQuestions(); ok && state.Page == string(session.PageForgotPassword) {
		state.Questions = questions[:]
	}
	return state
}

// Get handles GET /api/v1/session
// @Summary Get session state
// @Description Return the session's current page, adopting the page query parameter when the session state permits it
// @Tags session
// @Produce json
// @Param page query string false "Page the client URL names"
// @Success 200 {object} map[string]any
// @Router /api/v1/session [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if requested, ok := session.ParsePage(pageParam); ok {
			sess.Reconcile(requested)
		}
	}

	h.respondJSON(w, http.StatusOK, h.state(sess))
}

// ReturnHome handles POST /api/v1/session/home
// @Summary Return to home
// @Description Move the session back to the home page from anywhere, dropping any recovery ticket
// @Tags session
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/session/home [post]
func (h *SessionHandler) ReturnHome(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	sess.ReturnHome()
	h.respondJSON(w, http.StatusOK, h.state(sess))
}
