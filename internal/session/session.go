// Package session holds per-browser-session state and the page router that
// decides which page a session may be on.
package session

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/toolbench/portal/internal/models"
)

// Identity is the logged-in user snapshot kept on a session
type Identity struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
}

// Recovery is the in-progress password recovery ticket. It only ever lives on
// the session that started the flow, so a verification code can never be
// replayed from another session.
type Recovery struct {
	Email           string
	Questions       [2]string
	AnswersVerified bool
	Code            string
	CodeConsumed    bool
}

// Session is the per-browser-session record. The page tag plus the two
// optional payloads form the session state: Identity is only set on
// application, Recovery only during the forgot-password flow. Every page
// change a mutator makes goes through the Next transition table.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	page     Page
	identity *Identity
	recovery *Recovery
}

// Page returns the page the session is currently on
func (s *Session) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Identity returns the logged-in identity, or nil
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// applyLocked takes action from the current page through the transition
// table. mu must be held.
func (s *Session) applyLocked(action Action) error {
	next, err := Next(s.page, action)
	if err != nil {
		return err
	}
	s.page = next
	return nil
}

// ensureLocked moves the session onto want, taking the open action when the
// session has not navigated there yet. mu must be held.
func (s *Session) ensureLocked(want Page, open Action) error {
	if s.page == want {
		return nil
	}
	if next, err := Next(s.page, open); err == nil && next == want {
		s.page = next
		return nil
	}
	return ErrInvalidTransition
}

// OpenRegister moves the session onto the register page. Only sessions that
// may open the register form (the table allows it from home) get there.
func (s *Session) OpenRegister() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(PageRegister, ActionOpenRegister)
}

// SignIn records a successful login and moves the session to the application
// page. The login form lives on home, so the session first returns there
// (which the table allows from every page and which drops any in-progress
// recovery ticket) before taking the login transition.
func (s *Session) SignIn(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(PageHome, ActionReturnHome); err != nil {
		return err
	}
	if err := s.applyLocked(ActionLogin); err != nil {
		return err
	}
	s.identity = &id
	s.recovery = nil
	return nil
}

// ReturnHome moves the session back to home from any page and drops the
// recovery ticket, invalidating any outstanding code.
func (s *Session) ReturnHome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Returning home is declared from every page.
	next, _ := Next(s.page, ActionReturnHome)
	s.recovery = nil
	s.page = next
}

// RegistrationDone moves a session back to home after a successful
// registration; the user must log in with the new credentials.
func (s *Session) RegistrationDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(PageRegister, ActionOpenRegister); err != nil {
		return err
	}
	return s.applyLocked(ActionRegistered)
}

// StartRecovery records the target email and its security questions. The
// session stays on forgot_password until the answers are verified.
func (s *Session) StartRecovery(email string, questions [2]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(PageForgotPassword, ActionOpenForgotPassword); err != nil {
		return err
	}
	s.recovery = &Recovery{Email: email, Questions: questions}
	return nil
}

// RecoveryEmail returns the email under recovery, or "" when no ticket exists
func (s *Session) RecoveryEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recovery == nil {
		return ""
	}
	return s.recovery.Email
}

// RecoveryQuestions returns the loaded security questions and whether a
// ticket exists
func (s *Session) RecoveryQuestions() ([2]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recovery == nil {
		return [2]string{}, false
	}
	return s.recovery.Questions, true
}

// AnswersVerified stores the freshly issued code and advances to verify_code.
// It is called only after the code was handed to the mail relay; a delivery
// failure must leave the session where it is.
func (s *Session) AnswersVerified(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recovery == nil {
		return ErrInvalidTransition
	}
	if err := s.applyLocked(ActionAnswersVerified); err != nil {
		return err
	}
	s.recovery.AnswersVerified = true
	s.recovery.Code = code
	s.recovery.CodeConsumed = false
	return nil
}

// VerifyCode checks the submitted code against the one issued to this
// session. A code matches at most once; a successful match consumes it and
// advances to reset_password.
func (s *Session) VerifyCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.recovery
	if r == nil || !r.AnswersVerified || r.CodeConsumed || code == "" {
		return models.ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(r.Code)) != 1 {
		return models.ErrInvalidCode
	}
	// The transition is taken before the code is marked consumed, so a match
	// submitted from the wrong page does not burn the code.
	if err := s.applyLocked(ActionCodeMatched); err != nil {
		return err
	}
	r.CodeConsumed = true
	return nil
}

// ResetTarget returns the email a password reset applies to. It only yields a
// value while the session sits on reset_password with a consumed code.
func (s *Session) ResetTarget() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.recovery
	if r == nil || !r.CodeConsumed || s.page != PageResetPassword {
		return "", false
	}
	return r.Email, true
}

// RecoveryDone drops the ticket after a successful password update and
// returns the session to home.
func (s *Session) RecoveryDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.applyLocked(ActionPasswordReset); err != nil {
		return err
	}
	s.recovery = nil
	return nil
}

// Reconcile adopts the page requested through the URL query parameter when
// the session payloads allow it, so a page reload lands back on the page the
// URL names. Pages that need state the session does not hold fall back to the
// session's stored page. This is the deep-link contract, not a user action;
// action-driven page changes go through the transition table instead.
func (s *Session) Reconcile(requested Page) Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch requested {
	case PageHome, PageRegister, PageForgotPassword:
		if s.page == PageApplication && s.identity != nil {
			// A logged-in session stays on the application page until it
			// signs out.
			break
		}
		s.page = requested
	case PageApplication:
		if s.identity != nil {
			s.page = requested
		}
	case PageVerifyCode:
		if s.recovery != nil && s.recovery.AnswersVerified && !s.recovery.CodeConsumed {
			s.page = requested
		}
	case PageResetPassword:
		if s.recovery != nil && s.recovery.CodeConsumed {
			s.page = requested
		}
	}
	return s.page
}

// Manager owns all live sessions, keyed by the session cookie value
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers a new session starting on the home page
func (m *Manager) Create() *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		page:      PageHome,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the live session with the given ID
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete removes a session. Any code issued to it dies with it.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession stores the session in the request context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext retrieves the session from the request context
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
