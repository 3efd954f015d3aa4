package repository

import (
	"context"
	"errors"

	"athlete-registry-backend/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

// DuplicateError reports a unique-constraint violation naming the field,
// so callers can surface a field-specific conflict.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already exists"
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// List returns all users, optionally filtered by role.
	List(ctx context.Context, role *models.Role) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error

	// Uniqueness pre-checks against confirmed users. Absence is a normal
	// outcome, not an error.
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	IDNumberExists(ctx context.Context, idNumber string) (bool, error)
}
