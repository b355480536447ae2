// Package notify drains booking events to a delivery backend at a bounded
// rate. Delivery is fire-and-forget relative to the booking transaction:
// the event was published after commit and a failed send never rolls
// anything back.
package notify

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/events"
)

// Sender delivers one event to the outside world (email, push, chat).
type Sender interface {
	Send(ctx context.Context, event events.Event) error
}

// LogSender writes each event to the log. Stands in for a real delivery
// backend until one is configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, e events.Event) error {
	s.Logger.Info().
		Str("type", string(e.Type)).
		Str("booking_id", e.BookingID.String()).
		Str("user_id", e.UserID.String()).
		Str("detail", e.Detail).
		Msg("notification")
	return nil
}

// Notifier buffers events from the bus and sends them rate-limited.
type Notifier struct {
	sender  Sender
	limiter *rate.Limiter
	queue   chan events.Event
	logger  zerolog.Logger
}

// Config holds notifier tuning.
type Config struct {
	// RatePerSecond is the sustained send rate.
	RatePerSecond float64
	// Burst is the short-term burst allowance.
	Burst int
	// QueueSize bounds the buffer; overflow drops the event with a log line.
	QueueSize int
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{RatePerSecond: 20, Burst: 30, QueueSize: 256}
}

// New creates a notifier around sender.
func New(sender Sender, cfg Config, logger zerolog.Logger) *Notifier {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultConfig().RatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultConfig().Burst
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Notifier{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		queue:   make(chan events.Event, cfg.QueueSize),
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// Attach subscribes the notifier to every event type on the bus.
func (n *Notifier) Attach(bus *events.Bus) {
	bus.SubscribeAll(n.Enqueue)
}

// Enqueue buffers an event for delivery, dropping it when the queue is full.
func (n *Notifier) Enqueue(e events.Event) {
	select {
	case n.queue <- e:
	default:
		n.logger.Warn().
			Str("type", string(e.Type)).
			Str("booking_id", e.BookingID.String()).
			Msg("notification queue full, event dropped")
	}
}

// Run consumes the queue until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-n.queue:
			if err := n.limiter.Wait(ctx); err != nil {
				return
			}
			if err := n.sender.Send(ctx, e); err != nil {
				n.logger.Error().
					Err(err).
					Str("type", string(e.Type)).
					Str("booking_id", e.BookingID.String()).
					Msg("notification send failed")
			}
		}
	}
}
