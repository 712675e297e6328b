package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// DuplicateGuard suppresses accidental double submissions of the same form
// (same email, date and time slot) within a short window. This is not slot
// availability checking; two different parents can book the same slot.
type DuplicateGuard struct {
	client *redis.Client
	window time.Duration
	logger *logging.Logger
}

// NewDuplicateGuard creates a guard backed by Redis. A nil client yields a
// nil guard, and a nil guard admits every submission.
func NewDuplicateGuard(client *redis.Client, window time.Duration, logger *logging.Logger) *DuplicateGuard {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &DuplicateGuard{client: client, window: window, logger: logger}
}

// FirstSubmission reports whether this appointment is the first submission
// of its email/date/time tuple within the window. Redis failures admit the
// submission; losing dedupe is better than losing a booking.
func (g *DuplicateGuard) FirstSubmission(ctx context.Context, appt *Appointment) bool {
	if g == nil {
		return true
	}
	key := dedupeKey(appt)
	ok, err := g.client.SetNX(ctx, key, appt.ID, g.window).Result()
	if err != nil {
		g.logger.Warn("dedupe: redis unavailable, admitting submission", "error", err)
		return true
	}
	if !ok {
		g.logger.Info("dedupe: duplicate submission suppressed", "key", key)
	}
	return ok
}

func dedupeKey(appt *Appointment) string {
	return "booking:dedupe:" + strings.ToLower(appt.Email) + "|" + appt.PreferredDate + "|" + appt.PreferredTime
}
