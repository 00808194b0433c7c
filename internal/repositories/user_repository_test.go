package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolbench/portal/internal/models"
	"go.uber.org/zap"
)

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func testUser() *models.User {
	return &models.User{
		FirstName:           "Alice",
		LastName:            "Anderson",
		Username:            "alice",
		Email:               "alice@x.com",
		Role:                models.RoleUser,
		PasswordHash:        "passwordhash",
		SecurityQuestion1:   "What is the name of your first pet?",
		SecurityAnswer1Hash: "answerhash1",
		SecurityQuestion2:   "What is your favorite color?",
		SecurityAnswer2Hash: "answerhash2",
	}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectedErr error
		expectedID  int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("Alice", "Anderson", "alice", "alice@x.com", models.RoleUser, "passwordhash",
						"What is the name of your first pet?", "answerhash1",
						"What is your favorite color?", "answerhash2").
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			expectedID: 1,
		},
		{
			name: "duplicate username",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))
			},
			expectedErr: models.ErrDuplicate,
		},
		{
			name: "duplicate email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))
			},
			expectedErr: models.ErrDuplicate,
		},
		{
			name: "database error on insert",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("database error"))
			},
			expectedErr: errors.New("failed to create user"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user := testUser()
			err := repo.Create(context.Background(), user)

			if tt.expectedErr != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedErr, models.ErrDuplicate) {
					assert.ErrorIs(t, err, models.ErrDuplicate)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, user.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "role", "password_hash"}).
					AddRow(1, "Alice", "Anderson", "alice", "alice@x.com", "user", "passwordhash")
				mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, role, password_hash`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, role, password_hash`).
					WithArgs("alice").
					WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "role", "password_hash"}))
			},
			expectedErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByUsername(context.Background(), "alice")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, models.RoleUser, user.Role)
				assert.Equal(t, "passwordhash", user.PasswordHash)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SecurityQuestions(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT security_question_1, security_question_2`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"security_question_1", "security_question_2"}).
			AddRow("What is the name of your first pet?", "What is your favorite color?"))

	q1, q2, err := repo.SecurityQuestions(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "What is the name of your first pet?", q1)
	assert.Equal(t, "What is your favorite color?", q2)

	mock.ExpectQuery(`SELECT security_question_1, security_question_2`).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"security_question_1", "security_question_2"}))

	_, _, err = repo.SecurityQuestions(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SecurityAnswerHashes(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT security_answer_1_hash, security_answer_2_hash`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"security_answer_1_hash", "security_answer_2_hash"}).
			AddRow("hash1", "hash2"))

	h1, h2, err := repo.SecurityAnswerHashes(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash1", h1)
	assert.Equal(t, "hash2", h2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET password_hash`).
					WithArgs("newhash", "alice@x.com").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "no such email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET password_hash`).
					WithArgs("newhash", "alice@x.com").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.UpdatePassword(context.Background(), "alice@x.com", "newhash")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetAll(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "role", "password_hash"}).
		AddRow(1, "Alice", "Anderson", "alice", "alice@x.com", "user", "hash1").
		AddRow(2, "Bob", "Brown", "bob", "bob@x.com", "moderator", "hash2")
	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, role, password_hash`).
		WillReturnRows(rows)

	users, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, models.RoleModerator, users[1].Role)
	assert.Equal(t, "hash2", users[1].PasswordHash)

	assert.NoError(t, mock.ExpectationsWereMet())
}
