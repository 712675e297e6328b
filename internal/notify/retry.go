package notify

import (
	"context"
	"time"

	"github.com/totsandteens/clinic-bookings/internal/observability/metrics"
	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// RetryPolicy bounds the attempts of a single send.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy mirrors the production booking flow: four attempts,
// 500ms base delay, delays capped at 15s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    15 * time.Second,
	}
}

// RetrySender wraps a channel send with bounded-attempt exponential backoff.
// It is the only place in the pipeline where time passes.
type RetrySender struct {
	policy  RetryPolicy
	logger  *logging.Logger
	metrics *metrics.DeliveryMetrics
}

// NewRetrySender creates a retry sender. Zero-valued policy fields fall back
// to the defaults.
func NewRetrySender(policy RetryPolicy, m *metrics.DeliveryMetrics, logger *logging.Logger) *RetrySender {
	def := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = def.BaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = def.MaxDelay
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RetrySender{policy: policy, logger: logger, metrics: m}
}

// Send runs up to MaxAttempts channel invocations, sleeping between attempts.
// Non-retriable errors short-circuit. The backoff sleep suspends only this
// send; cancelling the context aborts the wait immediately. On exhaustion the
// last channel error is returned.
func (r *RetrySender) Send(ctx context.Context, ch Channel, msg Message) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := ch.Send(ctx, msg)
		if err == nil {
			r.metrics.ObserveSend(ch.Name(), "ok")
			return nil
		}
		lastErr = err
		r.metrics.ObserveSend(ch.Name(), "error")

		if !IsRetriable(err) {
			r.logger.Warn("send failed with non-retriable error",
				"channel", ch.Name(), "kind", ErrKind(err), "to", msg.To, "error", err)
			return err
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		r.logger.Warn("send failed; backing off",
			"channel", ch.Name(), "attempt", attempt, "delay", delay, "to", msg.To, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	r.logger.Error("send attempts exhausted",
		"channel", ch.Name(), "attempts", r.policy.MaxAttempts, "to", msg.To, "error", lastErr)
	return lastErr
}

// backoff returns min(MaxDelay, BaseDelay * 2^(attempt-1)).
func (r *RetrySender) backoff(attempt int) time.Duration {
	delay := r.policy.BaseDelay << (attempt - 1)
	if delay <= 0 || delay > r.policy.MaxDelay {
		delay = r.policy.MaxDelay
	}
	return delay
}
