package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facility_booking",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by initial status.",
		},
		[]string{"status"},
	)

	approvalDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facility_booking",
			Name:      "approval_decision_total",
			Help:      "Count of approval decisions by stage and outcome.",
		},
		[]string{"stage", "decision"},
	)

	attendance = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facility_booking",
			Name:      "attendance_total",
			Help:      "Count of check-in/check-out attempts by outcome.",
		},
		[]string{"action", "outcome"},
	)

	noShow = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facility_booking",
			Name:      "no_show_total",
			Help:      "Count of bookings that ended as no-shows.",
		},
	)

	userBlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facility_booking",
			Name:      "user_blocked_total",
			Help:      "Count of accounts blocked for exceeding the no-show limit.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facility_booking",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by admins.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, approvalDecision, attendance,
			noShow, userBlocked, bookingCancelled)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncApprovalDecision(stage, decision string) {
	approvalDecision.WithLabelValues(stage, decision).Inc()
}

func IncAttendance(action, outcome string) {
	attendance.WithLabelValues(action, outcome).Inc()
}

func IncNoShow() {
	noShow.Inc()
}

func IncUserBlocked() {
	userBlocked.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}
