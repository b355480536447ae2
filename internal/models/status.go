package models

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusWaitingLecturerApproval Status = "waiting_lecturer_approval"
	StatusPending                 Status = "pending"
	StatusApproved                Status = "approved"
	StatusRejected                Status = "rejected"
	StatusInUse                   Status = "in_use"
	StatusCompleted               Status = "completed"
	StatusNoShow                  Status = "no_show"
	StatusCancelled               Status = "cancelled"
)

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Occupies reports whether a booking in status s shows up as occupied on
// the availability read model. Completed and no-show records still occupy;
// only rejection and cancellation free the slot.
func (s Status) Occupies() bool {
	return s != StatusRejected && s != StatusCancelled
}

// Claims reports whether a booking in status s holds its slot exclusively
// for conflict checks. Pending and waiting requests overlap freely until
// one of them is approved; completed and no-show records still claim, a
// retroactive insert over them would break the audit trail.
func (s Status) Claims() bool {
	switch s {
	case StatusApproved, StatusInUse, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}
