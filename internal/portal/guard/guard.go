// Package guard decides whether a portal view may render for a session.
// Guards are pure functions of a session.Snapshot.
package guard

import (
	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/portal/session"
)

type Outcome int

const (
	// Wait means the session is still resolving; render a placeholder.
	Wait Outcome = iota
	Allow
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is a guard verdict. Target is set only for Redirect.
type Decision struct {
	Outcome Outcome
	Target  session.Destination
}

// Policy is a guard.
type Policy func(snap session.Snapshot) Decision

var (
	allow = Decision{Outcome: Allow}
	wait  = Decision{Outcome: Wait}
)

func redirect(to session.Destination) Decision {
	return Decision{Outcome: Redirect, Target: to}
}

// Public allows everyone, including while the session resolves.
func Public(session.Snapshot) Decision {
	return allow
}

// Authenticated allows any signed-in user.
func Authenticated(snap session.Snapshot) Decision {
	if snap.Loading {
		return wait
	}
	if !snap.Authenticated() {
		return redirect(session.DestLogin)
	}
	return allow
}

// Admin allows administrators only.
func Admin(snap session.Snapshot) Decision {
	return byRole(snap, func(r domain.Role) bool {
		switch r {
		case domain.RoleAdmin:
			return true
		case domain.RoleInstructor, domain.RoleStudent:
			return false
		default:
			return false
		}
	})
}

// Instructor allows instructors and administrators.
func Instructor(snap session.Snapshot) Decision {
	return byRole(snap, func(r domain.Role) bool {
		switch r {
		case domain.RoleInstructor, domain.RoleAdmin:
			return true
		case domain.RoleStudent:
			return false
		default:
			return false
		}
	})
}

func byRole(snap session.Snapshot, permitted func(domain.Role) bool) Decision {
	if snap.Loading {
		return wait
	}
	role, ok := snap.Role()
	if !ok {
		return redirect(session.DestLogin)
	}
	if !permitted(role) {
		return redirect(session.DestDashboard)
	}
	return allow
}
