package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/toolbench/portal/internal/models"
	"go.uber.org/zap"
)

// userRepository implements the credential store over database/sql
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// isUniqueViolation reports whether err is the SQLite unique-constraint error.
// Concurrent registrations racing on the same username or email end up here:
// one insert wins, the other hits the constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new user. A username or email already present fails with
// models.ErrDuplicate.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, username, email, role, password_hash,
			security_question_1, security_answer_1_hash, security_question_2, security_answer_2_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.Role,
		user.PasswordHash,
		user.SecurityQuestion1,
		user.SecurityAnswer1Hash,
		user.SecurityQuestion2,
		user.SecurityAnswer2Hash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicate
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, username, email, role, password_hash
		FROM users
		WHERE username = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check username existence", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// SecurityQuestions retrieves the two security questions stored for an email
func (r *userRepository) SecurityQuestions(ctx context.Context, email string) (string, string, error) {
	query := `
		SELECT security_question_1, security_question_2
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	var q1, q2 string
	err := r.db.QueryRowContext(ctx, query, email).Scan(&q1, &q2)
	if err == sql.ErrNoRows {
		return "", "", models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get security questions", zap.Error(err))
		return "", "", fmt.Errorf("failed to get security questions: %w", err)
	}

	return q1, q2, nil
}

// SecurityAnswerHashes retrieves the two stored answer hashes for an email
func (r *userRepository) SecurityAnswerHashes(ctx context.Context, email string) (string, string, error) {
	query := `
		SELECT security_answer_1_hash, security_answer_2_hash
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	var h1, h2 string
	err := r.db.QueryRowContext(ctx, query, email).Scan(&h1, &h2)
	if err == sql.ErrNoRows {
		return "", "", models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get security answer hashes", zap.Error(err))
		return "", "", fmt.Errorf("failed to get security answer hashes: %w", err)
	}

	return h1, h2, nil
}

// UpdatePassword overwrites the password hash stored for an email
func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE email = ?`

	result, err := r.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		r.logger.Error("failed to update password", zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetAll retrieves every user record, password hashes included. Access is
// restricted to moderators by the caller, not here.
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, first_name, last_name, username, email, role, password_hash
		FROM users
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Username,
			&user.Email,
			&user.Role,
			&user.PasswordHash,
		); err != nil {
			r.logger.Error("failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}
