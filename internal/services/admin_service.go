package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/toolbench/portal/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps the users table methods the
// moderator user-database view needs
type AdminUserRepository interface {
	// GetAll retrieves every user record, password hashes included.
	GetAll(ctx context.Context) ([]models.User, error)
}

// adminService implements the moderator-only user database
type adminService struct {
	userRepo AdminUserRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers returns the full credential table in its moderator view. Role
// enforcement happens at the route, not here.
func (s *adminService) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.UserListItem, len(users))
	for i, user := range users {
		items[i] = models.UserListItem{
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			Username:     user.Username,
			Email:        user.Email,
			Role:         user.Role,
			PasswordHash: user.PasswordHash,
		}
	}

	return items, nil
}

// csvHeader matches the columns of the downloadable user table
var csvHeader = []string{"First Name", "Last Name", "Username", "Email", "Role", "Password"}

// ExportCSV writes the user database as CSV, one row per user
func (s *adminService) ExportCSV(ctx context.Context, w io.Writer) error {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, user := range users {
		record := []string{user.FirstName, user.LastName, user.Username, user.Email, string(user.Role), user.PasswordHash}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}
