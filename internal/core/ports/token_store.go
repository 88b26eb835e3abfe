package ports

import (
	"context"
	"time"
)

// TokenRevoker keeps the denylist of logged-out bearer tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ResetTokenStore holds single-use password reset tokens keyed by digest.
type ResetTokenStore interface {
	Save(ctx context.Context, digest, userID string, ttl time.Duration) error
	// Consume returns the owning user id and deletes the entry atomically.
	// It returns domain.ErrInvalidResetToken when the digest is unknown or expired.
	Consume(ctx context.Context, digest string) (string, error)
}
