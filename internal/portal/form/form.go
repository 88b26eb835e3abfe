// Package form validates portal input before it is sent to the API.
package form

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/edulearn/lms/internal/pkg/validation"
)

// RegisterInput is the self-registration form.
type RegisterInput struct {
	FirstName       string `json:"firstName" validate:"required,max=50"`
	LastName        string `json:"lastName" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ResetPasswordInput struct {
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Error lists every field problem of one form submission.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	once sync.Once
	v    *validator.Validate
)

// Validate checks v against its struct tags. It returns nil or *Error.
func Validate(in any) error {
	once.Do(func() { v = validation.New() })
	if err := v.Struct(in); err != nil {
		return &Error{Message: validation.Message(err)}
	}
	return nil
}
