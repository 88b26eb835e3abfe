package session

import "github.com/edulearn/lms/internal/core/domain"

// Destination is a portal view the controller asks to be shown.
type Destination string

const (
	DestLogin          Destination = "/login"
	DestDashboard      Destination = "/dashboard"
	DestInstructorHome Destination = "/instructor/dashboard"
	DestAdminHome      Destination = "/admin/dashboard"
)

// DestStudentHome is also the generic authenticated home.
const DestStudentHome = DestDashboard

// Navigator receives navigation intents. The controller never routes on its
// own.
type Navigator interface {
	Navigate(dest Destination)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(dest Destination)

func (f NavigatorFunc) Navigate(dest Destination) { f(dest) }

// HomeFor maps a role to its landing view.
func HomeFor(role domain.Role) Destination {
	switch role {
	case domain.RoleAdmin:
		return DestAdminHome
	case domain.RoleInstructor:
		return DestInstructorHome
	case domain.RoleStudent:
		return DestStudentHome
	default:
		return DestStudentHome
	}
}
