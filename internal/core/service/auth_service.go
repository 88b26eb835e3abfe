package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/core/ports"
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultResetTTL = 10 * time.Minute
)

// EventEnqueuer accepts auth events for asynchronous delivery.
type EventEnqueuer interface {
	Enqueue(event domain.AuthEvent)
}

// AuthDependencies encapsulates the collaborators of AuthService.
type AuthDependencies struct {
	Users   ports.UserRepository
	Revoker ports.TokenRevoker
	Resets  ports.ResetTokenStore
	Events  EventEnqueuer
}

// AuthOptions tunes token lifetimes and the reset link handed to users.
type AuthOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	ResetTTL  time.Duration
	// ResetURL is the portal page that accepts the reset token as its last path segment.
	ResetURL string
}

// AuthService implements the account lifecycle: registration, login,
// logout, password recovery and profile updates.
type AuthService struct {
	users   ports.UserRepository
	revoker ports.TokenRevoker
	resets  ports.ResetTokenStore
	events  EventEnqueuer
	opts    AuthOptions
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(deps AuthDependencies, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = defaultResetTTL
	}
	return &AuthService{
		users:   deps.Users,
		revoker: deps.Revoker,
		resets:  deps.Resets,
		events:  deps.Events,
		opts:    opts,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a student account and signs it in. Self-registration can
// never produce an instructor or admin.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if in.Role != "" && in.Role != string(domain.RoleStudent) {
		return nil, domain.ErrRoleNotAllowed
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.emit(domain.AuthEvent{Type: domain.EventUserRegistered, UserID: created.ID, Email: created.Email})
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login verifies credentials and returns a fresh bearer token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims ports.TokenClaims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 || claims.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ForgotPassword issues a single-use reset token and queues the e-mail that
// carries it. Only the digest is stored.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrEmailNotRegistered
	}
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	resetToken := uuid.NewString()
	if err := s.resets.Save(ctx, digest(resetToken), user.ID, s.opts.ResetTTL); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	s.emit(domain.AuthEvent{
		Type:   domain.EventPasswordResetRequested,
		UserID: user.ID,
		Email:  user.Email,
		Data: map[string]string{
			"resetUrl":  strings.TrimRight(s.opts.ResetURL, "/") + "/" + resetToken,
			"expiresIn": s.opts.ResetTTL.String(),
		},
	})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return domain.ErrInvalidResetToken
	}
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	userID, err := s.resets.Consume(ctx, digest(resetToken))
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// UpdateDetails merges profile fields. Role and password are not reachable
// through this path.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, domain.ErrInvalidCredentials
		}
		if other, err := s.users.FindByEmail(ctx, email); err == nil && other.ID != user.ID {
			return nil, domain.ErrUserExists
		}
		patch.Email = &email
	}

	patch.Apply(user)
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update details: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return domain.ErrInvalidCredentials
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.emit(domain.AuthEvent{Type: domain.EventPasswordChanged, UserID: user.ID, Email: user.Email})
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.opts.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}

func (s *AuthService) emit(event domain.AuthEvent) {
	if s.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	s.events.Enqueue(event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
