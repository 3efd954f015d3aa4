package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"athlete-registry-backend/internal/features/registration/models"
	"athlete-registry-backend/internal/features/registration/repository"
)

const keyPrefixPending = "pending_registration:"

type Repository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) repository.PendingRepository {
	return &Repository{client: client}
}

// Stage stores the record as a JSON blob with a TTL equal to the remaining
// OTP window, so Redis removes it at expiry with no sweep process.
func (r *Repository) Stage(ctx context.Context, pending *models.PendingRegistration) error {
	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending registration already expired")
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending registration: %w", err)
	}

	key := keyPrefixPending + pending.ID
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage pending registration: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.PendingRegistration, error) {
	data, err := r.client.Get(ctx, keyPrefixPending+id).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending registration: %w", err)
	}

	var pending models.PendingRegistration
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}
	return &pending, nil
}

func (r *Repository) Discard(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefixPending+id).Err(); err != nil {
		return fmt.Errorf("failed to discard pending registration: %w", err)
	}
	return nil
}
