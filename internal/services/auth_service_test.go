package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolbench/portal/internal/models"
	"go.uber.org/zap"
)

const testModeratorCode = "moderator-secret"

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	created                *models.User
	createErr              error
	user                   *models.User
	getErr                 error
	existsByEmailResult    bool
	existsByEmailError     error
	existsByUsernameResult bool
	existsByUsernameError  error
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameError != nil {
		return false, m.existsByUsernameError
	}
	return m.existsByUsernameResult, nil
}

// validRegisterRequest returns a request that passes every validation
func validRegisterRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		FirstName:         "Alice",
		LastName:          "Anderson",
		Username:          "alice",
		Email:             "alice@x.com",
		Role:              models.RoleUser,
		Password:          "abc123",
		ConfirmPassword:   "abc123",
		SecurityQuestion1: models.SecurityQuestions[2],
		SecurityAnswer1:   "Cat",
		SecurityQuestion2: models.SecurityQuestions[1],
		SecurityAnswer2:   "Blue",
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*models.RegisterRequest)
		repo        *mockUserRepository
		expectedErr error
	}{
		{
			name:   "success",
			mutate: func(r *models.RegisterRequest) {},
			repo:   &mockUserRepository{},
		},
		{
			name:   "success as moderator with code",
			mutate: func(r *models.RegisterRequest) { r.Role = models.RoleModerator; r.ModeratorCode = testModeratorCode },
			repo:   &mockUserRepository{},
		},
		{
			name:        "missing first name",
			mutate:      func(r *models.RegisterRequest) { r.FirstName = "" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrMissingFields,
		},
		{
			name:        "missing security answer",
			mutate:      func(r *models.RegisterRequest) { r.SecurityAnswer2 = "" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrMissingFields,
		},
		{
			name:        "password mismatch",
			mutate:      func(r *models.RegisterRequest) { r.ConfirmPassword = "different" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "invalid email format",
			mutate:      func(r *models.RegisterRequest) { r.Email = "not-an-email" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "unknown role",
			mutate:      func(r *models.RegisterRequest) { r.Role = "admin" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "moderator without code",
			mutate:      func(r *models.RegisterRequest) { r.Role = models.RoleModerator },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "moderator with wrong code",
			mutate:      func(r *models.RegisterRequest) { r.Role = models.RoleModerator; r.ModeratorCode = "guess" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "same security question twice",
			mutate:      func(r *models.RegisterRequest) { r.SecurityQuestion2 = r.SecurityQuestion1 },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "security question outside catalog",
			mutate:      func(r *models.RegisterRequest) { r.SecurityQuestion1 = "What is your mother's maiden name?" },
			repo:        &mockUserRepository{},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "email already registered",
			mutate:      func(r *models.RegisterRequest) {},
			repo:        &mockUserRepository{existsByEmailResult: true},
			expectedErr: models.ErrDuplicate,
		},
		{
			name:        "username already registered",
			mutate:      func(r *models.RegisterRequest) {},
			repo:        &mockUserRepository{existsByUsernameResult: true},
			expectedErr: models.ErrDuplicate,
		},
		{
			name:        "store constraint wins the race",
			mutate:      func(r *models.RegisterRequest) {},
			repo:        &mockUserRepository{createErr: models.ErrDuplicate},
			expectedErr: models.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.repo, zap.NewNop(), testModeratorCode)

			req := validRegisterRequest()
			tt.mutate(req)

			err := svc.Register(context.Background(), req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tt.repo.created)

			// Stored credentials are digests, never plaintext.
			assert.Equal(t, HashText("abc123"), tt.repo.created.PasswordHash)
			assert.Equal(t, HashAnswer("cat"), tt.repo.created.SecurityAnswer1Hash)
			assert.Equal(t, HashAnswer("blue"), tt.repo.created.SecurityAnswer2Hash)
		})
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewAuthService(repo, zap.NewNop(), testModeratorCode)

	req := validRegisterRequest()
	req.Email = "  Alice@X.com "

	require.NoError(t, svc.Register(context.Background(), req))
	assert.Equal(t, "alice@x.com", repo.created.Email)
}

func TestAuthService_Login(t *testing.T) {
	storedUser := &models.User{
		ID:           1,
		FirstName:    "Alice",
		LastName:     "Anderson",
		Username:     "alice",
		Email:        "alice@x.com",
		Role:         models.RoleModerator,
		PasswordHash: HashText("abc123"),
	}

	tests := []struct {
		name        string
		username    string
		password    string
		repo        *mockUserRepository
		expectedErr error
	}{
		{
			name:     "success returns stored role",
			username: "alice",
			password: "abc123",
			repo:     &mockUserRepository{user: storedUser},
		},
		{
			name:        "wrong password",
			username:    "alice",
			password:    "wrong",
			repo:        &mockUserRepository{user: storedUser},
			expectedErr: models.ErrInvalidCredentials,
		},
		{
			name:        "unknown username",
			username:    "mallory",
			password:    "abc123",
			repo:        &mockUserRepository{getErr: models.ErrNotFound},
			expectedErr: models.ErrInvalidCredentials,
		},
		{
			name:        "missing password",
			username:    "alice",
			password:    "",
			repo:        &mockUserRepository{user: storedUser},
			expectedErr: models.ErrMissingFields,
		},
		{
			name:        "repository failure is not masked",
			username:    "alice",
			password:    "abc123",
			repo:        &mockUserRepository{getErr: errors.New("database down")},
			expectedErr: errors.New("database down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.repo, zap.NewNop(), testModeratorCode)

			user, err := svc.Login(context.Background(), &models.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.expectedErr != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedErr, models.ErrInvalidCredentials) || errors.Is(tt.expectedErr, models.ErrMissingFields) {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, models.RoleModerator, user.Role)
		})
	}
}

// Wrong-username and wrong-password failures must be indistinguishable.
func TestAuthService_Login_NoUserEnumeration(t *testing.T) {
	storedUser := &models.User{Username: "alice", PasswordHash: HashText("abc123")}

	svc := NewAuthService(&mockUserRepository{user: storedUser}, zap.NewNop(), testModeratorCode)
	_, errWrongPassword := svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "nope"})

	svc = NewAuthService(&mockUserRepository{getErr: models.ErrNotFound}, zap.NewNop(), testModeratorCode)
	_, errUnknownUser := svc.Login(context.Background(), &models.LoginRequest{Username: "mallory", Password: "abc123"})

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownUser)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}
