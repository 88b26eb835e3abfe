package validation

import (
	"strings"
	"testing"
)

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Aa1!aaaa":  true,
		"Aa1!aaa":   false, // too short
		"aa1!aaaa":  false, // no upper
		"AA1!AAAA":  false, // no lower
		"Aaa!aaaa":  false, // no digit
		"Aa1aaaaa":  false, // no symbol
		"Pässw0rd$": true,
	}
	for in, want := range cases {
		if got := StrongPassword(in); got != want {
			t.Errorf("StrongPassword(%q) = %v, want %v", in, got, want)
		}
	}
}

type signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func TestMessage_UsesJSONNames(t *testing.T) {
	err := New().Struct(signup{Email: "nope", Password: "weak", ConfirmPassword: "other"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := Message(err)
	for _, want := range []string{
		"email must be a valid email",
		"password must be at least 8 characters",
		"confirmPassword must match password",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestNew_AcceptsValidStruct(t *testing.T) {
	err := New().Struct(signup{Email: "john@example.com", Password: "Aa1!aaaa", ConfirmPassword: "Aa1!aaaa"})
	if err != nil {
		t.Fatalf("unexpected error: %v", Message(err))
	}
}
