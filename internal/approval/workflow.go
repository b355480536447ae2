// Package approval drives the role-dependent multi-stage approval state
// machine over booking statuses.
package approval

import (
	"time"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// Workflow validates and applies status transitions.
type Workflow struct {
	transitions map[models.Status][]models.Status
}

// NewWorkflow creates a workflow with the full transition table.
func NewWorkflow() *Workflow {
	return &Workflow{
		transitions: map[models.Status][]models.Status{
			models.StatusWaitingLecturerApproval: {models.StatusPending, models.StatusRejected, models.StatusCancelled},
			models.StatusPending:                 {models.StatusApproved, models.StatusRejected, models.StatusCancelled},
			models.StatusApproved:                {models.StatusInUse, models.StatusNoShow, models.StatusCancelled},
			models.StatusInUse:                   {models.StatusCompleted, models.StatusNoShow},
		},
	}
}

// CanTransition checks if moving from one status to another is allowed.
func (w *Workflow) CanTransition(from, to models.Status) bool {
	for _, s := range w.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transition applies a table-checked status change. The operation guards
// catch illegal moves first with a more specific message; this is the
// backstop that keeps every mutation on the table.
func (w *Workflow) transition(b *models.Booking, to models.Status) error {
	if !w.CanTransition(b.Status, to) {
		return domain.Validationf("transition",
			"booking %s cannot move from %s to %s", b.Code, b.Status, to)
	}
	b.Status = to
	return nil
}

// LecturerDecide applies the assigned lecturer's decision to a booking
// waiting on it. Approval moves the booking to the admin queue; rejection is
// terminal and records the reason.
func (w *Workflow) LecturerDecide(b *models.Booking, actor *models.User, approved bool, reason string, now time.Time) error {
	if b.Status != models.StatusWaitingLecturerApproval {
		return domain.Validationf("lecturer_decision",
			"booking %s is %s, not awaiting lecturer approval", b.Code, b.Status)
	}
	if actor.Role != models.RoleLecturer || actor.Email != b.LecturerEmail {
		return domain.Authorizationf("only the assigned lecturer %s may decide on booking %s",
			b.LecturerEmail, b.Code)
	}
	if bookingDatePast(b.Date, now) {
		return domain.Validationf("past_date", "booking %s is for a past date", b.Code)
	}

	target := models.StatusPending
	if !approved {
		target = models.StatusRejected
	}
	if err := w.transition(b, target); err != nil {
		return err
	}

	decidedAt := now
	b.LecturerDecidedBy = actor.ID
	b.LecturerDecidedAt = &decidedAt
	if !approved {
		b.Resolve(models.ResolutionLecturerRejected, reason, actor.ID, now)
	}
	b.UpdatedAt = now
	return nil
}

// GuardAdminDecision validates the admin decision preconditions without
// mutating the booking. The approve path flips status inside the store's
// serialized transaction, so the mutation happens after the guard passes.
func (w *Workflow) GuardAdminDecision(b *models.Booking, actor *models.User, now time.Time) error {
	if actor.Role != models.RoleAdmin {
		return domain.Authorizationf("only admins may decide on booking %s", b.Code)
	}
	if b.Status != models.StatusPending {
		return domain.Validationf("admin_decision",
			"booking %s is %s, not pending admin approval", b.Code, b.Status)
	}
	if bookingDatePast(b.Date, now) {
		return domain.Validationf("past_date", "booking %s is for a past date", b.Code)
	}
	return nil
}

// MarkAdminApproved applies the approval transition and stamps the decision
// fields; the store then commits the flip exclusively.
func (w *Workflow) MarkAdminApproved(b *models.Booking, actor *models.User, now time.Time) error {
	if err := w.transition(b, models.StatusApproved); err != nil {
		return err
	}
	decidedAt := now
	b.AdminDecidedBy = actor.ID
	b.AdminDecidedAt = &decidedAt
	b.UpdatedAt = now
	return nil
}

// AdminReject applies a terminal admin rejection. Unlike approval there is
// no past-date guard: a stale pending request can still be rejected.
func (w *Workflow) AdminReject(b *models.Booking, actor *models.User, reason string, now time.Time) error {
	if actor.Role != models.RoleAdmin {
		return domain.Authorizationf("only admins may decide on booking %s", b.Code)
	}
	if b.Status != models.StatusPending {
		return domain.Validationf("admin_decision",
			"booking %s is %s, not pending admin approval", b.Code, b.Status)
	}
	if err := w.transition(b, models.StatusRejected); err != nil {
		return err
	}
	decidedAt := now
	b.AdminDecidedBy = actor.ID
	b.AdminDecidedAt = &decidedAt
	b.Resolve(models.ResolutionAdminRejected, reason, actor.ID, now)
	b.UpdatedAt = now
	return nil
}

// Cancel applies an admin cancellation. Completed and already-cancelled
// bookings cannot be cancelled; everything else can, conflicts included,
// since cancellation is the human resolution for losing requests.
func (w *Workflow) Cancel(b *models.Booking, actor *models.User, reason string, now time.Time) error {
	if actor.Role != models.RoleAdmin {
		return domain.Authorizationf("only admins may cancel booking %s", b.Code)
	}
	switch b.Status {
	case models.StatusCompleted:
		return domain.Validationf("cancel", "booking %s is already completed", b.Code)
	case models.StatusCancelled:
		return domain.Validationf("cancel", "booking %s is already cancelled", b.Code)
	}
	b.Status = models.StatusCancelled
	b.Resolve(models.ResolutionCancelled, reason, actor.ID, now)
	b.UpdatedAt = now
	return nil
}

// bookingDatePast compares calendar dates: the booking date is a
// UTC-midnight value while now is campus-local.
func bookingDatePast(date, now time.Time) bool {
	return models.DateBefore(date, now)
}
