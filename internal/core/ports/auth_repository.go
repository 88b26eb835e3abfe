package ports

import (
	"context"

	"github.com/edulearn/lms/internal/core/domain"
)

// UserRepository defines persistence operations for LMS identities.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update persists profile fields and the password hash of an existing user.
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
}
