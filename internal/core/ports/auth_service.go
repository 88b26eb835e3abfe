package ports

import (
	"context"
	"time"

	"github.com/edulearn/lms/internal/core/domain"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// AuthResult is returned by flows that mint a new credential.
type AuthResult struct {
	Token string
	User  *domain.User
}

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// AuthService groups the account lifecycle use cases behind /api/auth.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	Logout(ctx context.Context, claims TokenClaims) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	UpdateDetails(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
