package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edulearn/lms/internal/core/domain"
)

// ResetTokenStore keeps password reset digests with their expiry.
// Key format: pwreset:<sha256 hex>
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func (s *ResetTokenStore) Save(ctx context.Context, digest, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(digest), userID, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume reads and deletes the digest in one round trip so a token can be
// redeemed once.
func (s *ResetTokenStore) Consume(ctx context.Context, digest string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(digest)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidResetToken
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (s *ResetTokenStore) key(digest string) string {
	return "pwreset:" + digest
}
