package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"

	"github.com/toolbench/portal/internal/models"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Create inserts a new user. A username or email already present fails
	// with models.ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	// GetByUsername retrieves a user by username, models.ErrNotFound when
	// no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// authService implements registration and login
type authService struct {
	userRepo      UserRepository
	logger        *zap.Logger
	moderatorCode string
}

// NewAuthService creates a new auth service. moderatorCode is the shared
// secret required to register with the moderator role.
func NewAuthService(userRepo UserRepository, logger *zap.Logger, moderatorCode string) *authService {
	return &authService{
		userRepo:      userRepo,
		logger:        logger,
		moderatorCode: moderatorCode,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.Role == "" {
		req.Role = models.RoleUser
	}

	if err := s.validateRegistration(req); err != nil {
		return err
	}

	// Pre-check uniqueness for a friendly error; the unique constraints on
	// the users table settle any race between concurrent registrations.
	emailExists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if emailExists {
		return models.ErrDuplicate
	}

	usernameExists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if usernameExists {
		return models.ErrDuplicate
	}

	user := &models.User{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Username:            req.Username,
		Email:               req.Email,
		Role:                req.Role,
		PasswordHash:        HashText(req.Password),
		SecurityQuestion1:   req.SecurityQuestion1,
		SecurityAnswer1Hash: HashAnswer(req.SecurityAnswer1),
		SecurityQuestion2:   req.SecurityQuestion2,
		SecurityAnswer2Hash: HashAnswer(req.SecurityAnswer2),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return nil
}

// validateRegistration runs every pre-store check on a registration request
func (s *authService) validateRegistration(req *models.RegisterRequest) error {
	if req.FirstName == "" || req.LastName == "" || req.Username == "" || req.Email == "" ||
		req.Password == "" || req.ConfirmPassword == "" ||
		req.SecurityAnswer1 == "" || req.SecurityAnswer2 == "" {
		return models.ErrMissingFields
	}

	if !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", models.ErrValidation, req.Role)
	}

	if req.Role == models.RoleModerator {
		if subtle.ConstantTimeCompare([]byte(req.ModeratorCode), []byte(s.moderatorCode)) != 1 {
			return fmt.Errorf("%w: invalid verification code for moderator registration", models.ErrValidation)
		}
	}

	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", models.ErrValidation)
	}

	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", models.ErrValidation)
	}

	if !models.KnownSecurityQuestion(req.SecurityQuestion1) || !models.KnownSecurityQuestion(req.SecurityQuestion2) {
		return fmt.Errorf("%w: unknown security question", models.ErrValidation)
	}
	if req.SecurityQuestion1 == req.SecurityQuestion2 {
		return fmt.Errorf("%w: security questions must differ", models.ErrValidation)
	}

	return nil
}

// Login authenticates a user by username and password. Unknown usernames and
// wrong passwords both come back as models.ErrInvalidCredentials, so the
// response does not reveal which part was wrong.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, models.ErrMissingFields
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	supplied := HashText(req.Password)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(user.PasswordHash)) != 1 {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}
