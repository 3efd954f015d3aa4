package repository

import (
	"context"
	"errors"

	"athlete-registry-backend/internal/features/registration/models"
)

// ErrPendingNotFound covers both a never-staged id and a record the TTL
// already removed; callers treat the two identically.
var ErrPendingNotFound = errors.New("pending registration not found")

type PendingRepository interface {
	// Stage persists the record so it ceases to exist at its expiry.
	Stage(ctx context.Context, pending *models.PendingRegistration) error
	Get(ctx context.Context, id string) (*models.PendingRegistration, error)
	// Discard is idempotent; discarding an absent or expired id is not an error.
	Discard(ctx context.Context, id string) error
}
