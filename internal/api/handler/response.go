package handler

import "github.com/edulearn/lms/internal/core/domain"

// envelope is the response body shared by every /api route.
type envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func ok(data any) envelope {
	return envelope{Success: true, Data: data}
}

func okMessage(msg string) envelope {
	return envelope{Success: true, Message: msg}
}
