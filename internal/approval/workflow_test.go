package approval

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

func TestWorkflowTransitions(t *testing.T) {
	w := NewWorkflow()

	tests := []struct {
		name        string
		from        models.Status
		to          models.Status
		shouldAllow bool
	}{
		{"waiting to pending", models.StatusWaitingLecturerApproval, models.StatusPending, true},
		{"waiting to rejected", models.StatusWaitingLecturerApproval, models.StatusRejected, true},
		{"waiting to cancelled", models.StatusWaitingLecturerApproval, models.StatusCancelled, true},
		{"pending to approved", models.StatusPending, models.StatusApproved, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"approved to in use", models.StatusApproved, models.StatusInUse, true},
		{"approved to no show", models.StatusApproved, models.StatusNoShow, true},
		{"in use to completed", models.StatusInUse, models.StatusCompleted, true},
		{"in use to no show", models.StatusInUse, models.StatusNoShow, true},
		// Invalid transitions
		{"waiting straight to approved", models.StatusWaitingLecturerApproval, models.StatusApproved, false},
		{"pending to in use", models.StatusPending, models.StatusInUse, false},
		{"approved to completed", models.StatusApproved, models.StatusCompleted, false},
		{"rejected is terminal", models.StatusRejected, models.StatusPending, false},
		{"completed is terminal", models.StatusCompleted, models.StatusInUse, false},
		{"no show is terminal", models.StatusNoShow, models.StatusApproved, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := w.CanTransition(tt.from, tt.to)
			if allowed != tt.shouldAllow {
				t.Errorf("transition %s -> %s: expected allowed=%v, got %v",
					tt.from, tt.to, tt.shouldAllow, allowed)
			}
		})
	}
}

func newWaitingBooking(lecturerEmail string) *models.Booking {
	return &models.Booking{
		ID:            uuid.New(),
		Code:          "BKG-20300310-TEST01",
		Date:          time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     9 * 60,
		EndTime:       10 * 60,
		RequesterRole: models.RoleStudent,
		LecturerEmail: lecturerEmail,
		Status:        models.StatusWaitingLecturerApproval,
	}
}

func TestLecturerDecide(t *testing.T) {
	now := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	lecturer := &models.User{ID: uuid.New(), Email: "doc@uni.edu", Role: models.RoleLecturer}

	t.Run("approve moves to pending", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		if err := w.LecturerDecide(b, lecturer, true, "", now); err != nil {
			t.Fatalf("LecturerDecide: %v", err)
		}
		if b.Status != models.StatusPending {
			t.Errorf("status = %s, want pending", b.Status)
		}
		if b.LecturerDecidedBy != lecturer.ID || b.LecturerDecidedAt == nil {
			t.Error("lecturer decision not recorded")
		}
		if b.Resolution != nil {
			t.Error("approval must not set a resolution")
		}
	})

	t.Run("reject is terminal with reason", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		if err := w.LecturerDecide(b, lecturer, false, "wrong course", now); err != nil {
			t.Fatalf("LecturerDecide: %v", err)
		}
		if b.Status != models.StatusRejected {
			t.Errorf("status = %s, want rejected", b.Status)
		}
		if b.Resolution == nil || b.Resolution.Kind != models.ResolutionLecturerRejected || b.Resolution.Reason != "wrong course" {
			t.Errorf("resolution = %+v, want lecturer rejection with reason", b.Resolution)
		}
	})

	t.Run("wrong lecturer is rejected", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		other := &models.User{ID: uuid.New(), Email: "other@uni.edu", Role: models.RoleLecturer}
		err := w.LecturerDecide(b, other, true, "", now)
		if !domain.IsAuthorization(err) {
			t.Errorf("expected authorization error, got %v", err)
		}
		if b.Status != models.StatusWaitingLecturerApproval {
			t.Errorf("booking mutated on failed guard: %s", b.Status)
		}
	})

	t.Run("past booking date fails", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		late := time.Date(2030, 3, 11, 0, 30, 0, 0, time.UTC)
		err := w.LecturerDecide(b, lecturer, true, "", late)
		if !domain.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("wrong status fails", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		b.Status = models.StatusPending
		err := w.LecturerDecide(b, lecturer, true, "", now)
		if !domain.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestAdminDecision(t *testing.T) {
	now := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	admin := &models.User{ID: uuid.New(), Email: "admin@uni.edu", Role: models.RoleAdmin}

	t.Run("guard passes for pending", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		b.Status = models.StatusPending
		if err := w.GuardAdminDecision(b, admin, now); err != nil {
			t.Fatalf("GuardAdminDecision: %v", err)
		}
		if err := w.MarkAdminApproved(b, admin, now); err != nil {
			t.Fatalf("MarkAdminApproved: %v", err)
		}
		if b.Status != models.StatusApproved || b.AdminDecidedBy != admin.ID {
			t.Errorf("approval not applied: %s", b.Status)
		}
	})

	t.Run("approve off the table fails", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		b.Status = models.StatusApproved
		if err := w.MarkAdminApproved(b, admin, now); !domain.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		if b.AdminDecidedBy == admin.ID {
			t.Error("booking mutated on illegal transition")
		}
	})

	t.Run("non-admin actor fails", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		b.Status = models.StatusPending
		student := &models.User{ID: uuid.New(), Role: models.RoleStudent}
		if err := w.GuardAdminDecision(b, student, now); !domain.IsAuthorization(err) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("reject records reason", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		b.Status = models.StatusPending
		if err := w.AdminReject(b, admin, "room maintenance", now); err != nil {
			t.Fatalf("AdminReject: %v", err)
		}
		if b.Status != models.StatusRejected {
			t.Errorf("status = %s, want rejected", b.Status)
		}
		if b.Resolution == nil || b.Resolution.Kind != models.ResolutionAdminRejected {
			t.Errorf("resolution = %+v, want admin rejection", b.Resolution)
		}
	})

	t.Run("reject allowed for past date", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		b.Status = models.StatusPending
		late := time.Date(2030, 3, 11, 0, 30, 0, 0, time.UTC)
		if err := w.GuardAdminDecision(b, admin, late); !domain.IsValidation(err) {
			t.Errorf("expected validation error approving past booking, got %v", err)
		}
		if err := w.AdminReject(b, admin, "stale request", late); err != nil {
			t.Errorf("AdminReject on past date: %v", err)
		}
	})

	t.Run("guard rejects non-pending", func(t *testing.T) {
		w := NewWorkflow()
		b := newWaitingBooking("doc@uni.edu")
		if err := w.GuardAdminDecision(b, admin, now); !domain.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	now := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	w := NewWorkflow()

	for _, status := range []models.Status{
		models.StatusWaitingLecturerApproval,
		models.StatusPending,
		models.StatusApproved,
	} {
		b := newWaitingBooking("doc@uni.edu")
		b.Status = status
		if err := w.Cancel(b, admin, "semester break", now); err != nil {
			t.Errorf("Cancel from %s: %v", status, err)
		}
		if b.Status != models.StatusCancelled || b.Resolution == nil {
			t.Errorf("cancel from %s not applied", status)
		}
	}

	for _, status := range []models.Status{models.StatusCompleted, models.StatusCancelled} {
		b := newWaitingBooking("doc@uni.edu")
		b.Status = status
		if err := w.Cancel(b, admin, "", now); !domain.IsValidation(err) {
			t.Errorf("Cancel from %s: expected validation error, got %v", status, err)
		}
	}

	b := newWaitingBooking("doc@uni.edu")
	student := &models.User{ID: uuid.New(), Role: models.RoleStudent}
	if err := w.Cancel(b, student, "", now); !domain.IsAuthorization(err) {
		t.Errorf("expected authorization error for non-admin, got %v", err)
	}
}
