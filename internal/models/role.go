package models

// Role identifies the kind of account making a booking.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"
)

// RoleHorizonDays is the maximum number of days ahead each role may book.
var RoleHorizonDays = map[Role]int{
	RoleStudent:  7,
	RoleLecturer: 30,
	RoleAdmin:    365,
}

// RoleInitialStatus is the status a freshly created booking starts in.
// Students need a lecturer sign-off first; lecturers and admins go straight
// to the admin queue.
var RoleInitialStatus = map[Role]Status{
	RoleStudent:  StatusWaitingLecturerApproval,
	RoleLecturer: StatusPending,
	RoleAdmin:    StatusPending,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}
