package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/toolbench/portal/internal/models"
	"github.com/toolbench/portal/internal/session"
	"go.uber.org/zap"
)

// RecoveryUserRepository is the interface that wraps the users table methods
// the forgot-password flow needs
type RecoveryUserRepository interface {
	// ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// SecurityQuestions retrieves the two security questions stored for an email.
	SecurityQuestions(ctx context.Context, email string) (string, string, error)
	// SecurityAnswerHashes retrieves the two stored answer hashes for an email.
	SecurityAnswerHashes(ctx context.Context, email string) (string, string, error)
	// UpdatePassword overwrites the password hash stored for an email.
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// CodeSender delivers a verification code out-of-band. An error halts the
// recovery flow at its current page.
type CodeSender interface {
	SendVerificationCode(to, code string) error
}

// recoveryService implements the forgot-password flow
type recoveryService struct {
	userRepo RecoveryUserRepository
	sender   CodeSender
	logger   *zap.Logger
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(userRepo RecoveryUserRepository, sender CodeSender, logger *zap.Logger) *recoveryService {
	return &recoveryService{
		userRepo: userRepo,
		sender:   sender,
		logger:   logger,
	}
}

// SubmitEmail starts recovery for an email and loads its security questions.
// Unlike login, this step does report whether the email exists; the page flow
// depends on that answer.
func (s *recoveryService) SubmitEmail(ctx context.Context, sess *session.Session, email string) ([2]string, error) {
	// Registration stores emails lower-cased; look them up the same way so a
	// mixed-case submission still finds the account.
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return [2]string{}, models.ErrMissingFields
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return [2]string{}, fmt.Errorf("failed to check email: %w", err)
	}
	if !exists {
		return [2]string{}, models.ErrNotFound
	}

	q1, q2, err := s.userRepo.SecurityQuestions(ctx, email)
	if err != nil {
		return [2]string{}, err
	}

	questions := [2]string{q1, q2}
	if err := sess.StartRecovery(email, questions); err != nil {
		return [2]string{}, err
	}
	return questions, nil
}

// SubmitAnswers verifies the two security answers, then generates a 4-digit
// code, hands it to the mail relay and, only if delivery succeeded, stores it
// on the session and advances to verify_code.
func (s *recoveryService) SubmitAnswers(ctx context.Context, sess *session.Session, answer1, answer2 string) error {
	email := sess.RecoveryEmail()
	if email == "" {
		return session.ErrInvalidTransition
	}
	if answer1 == "" || answer2 == "" {
		return models.ErrMissingFields
	}

	h1, h2, err := s.userRepo.SecurityAnswerHashes(ctx, email)
	if err != nil {
		return err
	}

	match1 := subtle.ConstantTimeCompare([]byte(HashAnswer(answer1)), []byte(h1)) == 1
	match2 := subtle.ConstantTimeCompare([]byte(HashAnswer(answer2)), []byte(h2)) == 1
	if !match1 || !match2 {
		return models.ErrInvalidCredentials
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.sender.SendVerificationCode(email, code); err != nil {
		s.logger.Error("failed to deliver verification code", zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrDeliveryFailure, err)
	}

	if err := sess.AnswersVerified(code); err != nil {
		return err
	}

	s.logger.Info("verification code issued", zap.String("session_id", sess.ID))
	return nil
}

// VerifyCode checks the submitted code against the one issued to the session
func (s *recoveryService) VerifyCode(sess *session.Session, code string) error {
	return sess.VerifyCode(code)
}

// ResetPassword sets a new password for the email under recovery and returns
// the session to home
func (s *recoveryService) ResetPassword(ctx context.Context, sess *session.Session, newPassword, confirmPassword string) error {
	email, ok := sess.ResetTarget()
	if !ok {
		return session.ErrInvalidTransition
	}

	if newPassword == "" || confirmPassword == "" {
		return models.ErrMissingFields
	}
	if newPassword != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", models.ErrValidation)
	}

	if err := s.userRepo.UpdatePassword(ctx, email, HashText(newPassword)); err != nil {
		return err
	}

	if err := sess.RecoveryDone(); err != nil {
		return err
	}
	s.logger.Info("password reset completed", zap.String("session_id", sess.ID))
	return nil
}

// generateCode returns a random 4-digit code in [1000, 9999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}
