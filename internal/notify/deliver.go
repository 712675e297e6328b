package notify

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totsandteens/clinic-bookings/internal/observability/metrics"
	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

var notifyTracer = otel.Tracer("clinic.internal.notify")

// Status is the terminal state of one delivery run.
type Status string

const (
	// StatusFullSuccess means every intended recipient was notified.
	StatusFullSuccess Status = "full_success"
	// StatusDegraded means the clinic was notified but the parent was not.
	StatusDegraded Status = "degraded_success"
	// StatusFailure means no recipient was notified.
	StatusFailure Status = "failure"
)

// Degradation reasons surfaced to the caller.
const (
	ReasonSandboxRestricted = "provider sandbox restriction; verify a domain to enable live sends"
	ReasonParentUndelivered = "parent confirmation could not be delivered"
	ReasonTimeout           = "delivery deadline exceeded"
)

// Outcome is the single result of a delivery run. Channel errors never
// escape the orchestrator in any other form.
type Outcome struct {
	Status Status
	// Reason explains a degraded or failed outcome in operator terms.
	Reason string
	// Err carries the original primary-channel error (or the deadline
	// error) for failed outcomes.
	Err error
}

// Delivered reports whether the clinic was notified.
func (o Outcome) Delivered() bool { return o.Status != StatusFailure }

// Deliverer sequences delivery attempts across recipients and channels. The
// clinic alert is the operationally critical message; every degradation path
// preserves best-effort clinic delivery and sacrifices the parent
// confirmation first.
type Deliverer struct {
	primary   Channel
	secondary Channel
	retry     *RetrySender
	metrics   *metrics.DeliveryMetrics
	logger    *logging.Logger
}

// NewDeliverer creates the orchestrator.
func NewDeliverer(primary, secondary Channel, retry *RetrySender, m *metrics.DeliveryMetrics, logger *logging.Logger) *Deliverer {
	if retry == nil {
		retry = NewRetrySender(DefaultRetryPolicy(), m, logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		primary:   primary,
		secondary: secondary,
		retry:     retry,
		metrics:   m,
		logger:    logger,
	}
}

// Deliver runs the fallback state machine for one booking:
//
//  1. Both messages concurrently on the primary channel.
//  2. On a sandbox restriction, clinic-only on the primary.
//  3. On anything else, or when stage 2 fails, the secondary channel —
//     clinic-only after a sandbox restriction, otherwise every recipient
//     that was originally intended.
//
// parentMsg may be nil when no confirmation is wanted. The returned outcome
// is always one of FullSuccess, DegradedSuccess or Failure.
func (d *Deliverer) Deliver(ctx context.Context, clinicMsg Message, parentMsg *Message) Outcome {
	ctx, span := notifyTracer.Start(ctx, "notify.deliver")
	defer span.End()

	outcome := d.deliver(ctx, clinicMsg, parentMsg)

	span.SetAttributes(
		attribute.String("clinic.delivery_outcome", string(outcome.Status)),
	)
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
	}
	d.metrics.ObserveOutcome(string(outcome.Status))
	return outcome
}

func (d *Deliverer) deliver(ctx context.Context, clinicMsg Message, parentMsg *Message) Outcome {
	if d.primary == nil {
		err := NewChannelError(KindAuthOrConfig, "primary email channel not configured")
		return Outcome{Status: StatusFailure, Reason: err.Detail, Err: err}
	}

	// Stage 1: both messages on the primary channel, concurrently. The
	// dual send is atomic-or-degrade: a partial success is never reported.
	clinicErr, parentErr := d.sendPrimaryBoth(ctx, clinicMsg, parentMsg)
	if clinicErr == nil && parentErr == nil {
		return Outcome{Status: StatusFullSuccess}
	}

	// The clinic alert landed but the confirmation did not. The alert must
	// not be duplicated, so only the parent message gets another chance, on
	// the relay.
	if clinicErr == nil {
		if IsSandboxRestricted(parentErr) {
			return Outcome{Status: StatusDegraded, Reason: ReasonSandboxRestricted}
		}
		if d.secondary != nil && !timedOut(ctx) {
			if err := d.retry.Send(ctx, d.secondary, *parentMsg); err == nil {
				return Outcome{Status: StatusFullSuccess}
			}
		}
		return Outcome{Status: StatusDegraded, Reason: ReasonParentUndelivered}
	}

	primaryErr := firstError(clinicErr, parentErr)

	if timedOut(ctx) {
		return Outcome{Status: StatusFailure, Reason: ReasonTimeout, Err: ctx.Err()}
	}

	if IsSandboxRestricted(primaryErr) {
		return d.degradeToClinicOnly(ctx, clinicMsg, primaryErr)
	}

	// Genuine channel failure: the secondary relay still attempts full
	// delivery to every originally intended recipient.
	d.logger.Warn("primary delivery failed; attempting secondary channel",
		"kind", ErrKind(primaryErr), "error", primaryErr)
	return d.attemptSecondary(ctx, clinicMsg, parentMsg, "", primaryErr)
}

func (d *Deliverer) sendPrimaryBoth(ctx context.Context, clinicMsg Message, parentMsg *Message) (clinicErr, parentErr error) {
	if parentMsg == nil {
		return d.retry.Send(ctx, d.primary, clinicMsg), nil
	}
	errc := make(chan error, 1)
	go func() {
		errc <- d.retry.Send(ctx, d.primary, *parentMsg)
	}()
	clinicErr = d.retry.Send(ctx, d.primary, clinicMsg)
	parentErr = <-errc
	return clinicErr, parentErr
}

// degradeToClinicOnly handles the sandbox-restriction path: the provider is
// healthy but refuses some recipients, so retry the critical alert alone on
// the primary before falling back to the relay.
func (d *Deliverer) degradeToClinicOnly(ctx context.Context, clinicMsg Message, sandboxErr error) Outcome {
	d.logger.Warn("provider sandbox restriction; degrading to clinic-only delivery", "error", sandboxErr)

	if err := d.retry.Send(ctx, d.primary, clinicMsg); err == nil {
		return Outcome{Status: StatusDegraded, Reason: ReasonSandboxRestricted}
	}
	if timedOut(ctx) {
		return Outcome{Status: StatusFailure, Reason: ReasonTimeout, Err: ctx.Err()}
	}

	// Parent delivery is already forfeit; only the clinic alert rides the
	// relay.
	return d.attemptSecondary(ctx, clinicMsg, nil, ReasonSandboxRestricted, sandboxErr)
}

// attemptSecondary is the last stage. A nil parentMsg means the parent is
// not (or no longer) an intended recipient; degradedReason explains why when
// one was sacrificed earlier. On failure the ORIGINAL primary error is
// surfaced; the relay is best-effort and its own errors are only logged.
func (d *Deliverer) attemptSecondary(ctx context.Context, clinicMsg Message, parentMsg *Message, degradedReason string, primaryErr error) Outcome {
	if d.secondary == nil {
		return Outcome{Status: StatusFailure, Reason: "all delivery channels exhausted", Err: primaryErr}
	}

	if err := d.retry.Send(ctx, d.secondary, clinicMsg); err != nil {
		if timedOut(ctx) {
			return Outcome{Status: StatusFailure, Reason: ReasonTimeout, Err: ctx.Err()}
		}
		d.logger.Error("secondary channel failed", "error", err)
		return Outcome{Status: StatusFailure, Reason: "all delivery channels exhausted", Err: primaryErr}
	}

	if parentMsg == nil {
		if degradedReason == "" {
			return Outcome{Status: StatusFullSuccess}
		}
		return Outcome{Status: StatusDegraded, Reason: degradedReason}
	}
	if err := d.retry.Send(ctx, d.secondary, *parentMsg); err != nil {
		d.logger.Warn("secondary channel delivered clinic alert but not parent confirmation", "error", err)
		return Outcome{Status: StatusDegraded, Reason: ReasonParentUndelivered}
	}
	return Outcome{Status: StatusFullSuccess}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func timedOut(ctx context.Context) bool {
	return ctx.Err() != nil
}
