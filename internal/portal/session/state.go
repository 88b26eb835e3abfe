package session

import "github.com/edulearn/lms/internal/core/domain"

// State is the lifecycle position of a Controller.
type State int

const (
	StateUninitialized State = iota
	StateResolving
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session handed to guards and
// observers. User is a private copy.
type Snapshot struct {
	State State
	User  *domain.User
	// Loading is true until Init settles and while any action is in flight.
	Loading bool
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// Role returns the user's role and false for an anonymous snapshot.
func (s Snapshot) Role() (domain.Role, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Role, true
}

// Result is what every user-triggered action resolves to. Message carries
// the server's explanation on failure and an optional confirmation on
// success.
type Result struct {
	OK      bool
	Message string
}
