package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routingChannel fails per recipient, so concurrent clinic/parent sends get
// deterministic results.
type routingChannel struct {
	mu   sync.Mutex
	name string
	fail map[string]error
	sent []string
}

func (c *routingChannel) Name() string { return c.name }

func (c *routingChannel) Send(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg.To)
	return c.fail[msg.To]
}

func (c *routingChannel) sentTo(addr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, to := range c.sent {
		if to == addr {
			n++
		}
	}
	return n
}

func (c *routingChannel) totalSent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

const (
	clinicAddr = "clinic@example.com"
	parentAddr = "parent@example.com"
)

func testMessages() (Message, *Message) {
	clinic := Message{To: clinicAddr, Subject: "New Appointment: Asha for General Checkup"}
	parent := Message{To: parentAddr, Subject: "Appointment Confirmation: General Checkup"}
	return clinic, &parent
}

func newTestDeliverer(primary, secondary Channel) *Deliverer {
	retry := NewRetrySender(RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}, nil, nil)
	return NewDeliverer(primary, secondary, retry, nil, nil)
}

func TestDeliverFullSuccessOnPrimary(t *testing.T) {
	primary := &routingChannel{name: "primary"}
	secondary := &routingChannel{name: "secondary"}
	d := newTestDeliverer(primary, secondary)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	assert.Equal(t, StatusFullSuccess, outcome.Status)
	assert.True(t, outcome.Delivered())
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 1, primary.sentTo(clinicAddr))
	assert.Equal(t, 1, primary.sentTo(parentAddr))
	assert.Equal(t, 0, secondary.totalSent(), "secondary must not be touched on success")
}

func TestDeliverClinicOnlyWhenNoConfirmationWanted(t *testing.T) {
	primary := &routingChannel{name: "primary"}
	d := newTestDeliverer(primary, nil)
	clinic, _ := testMessages()

	outcome := d.Deliver(context.Background(), clinic, nil)

	assert.Equal(t, StatusFullSuccess, outcome.Status)
	assert.Equal(t, 1, primary.totalSent())
}

func TestDeliverSandboxOnParentDegradesWithoutDuplicatingClinicAlert(t *testing.T) {
	primary := &routingChannel{name: "primary", fail: map[string]error{
		parentAddr: NewChannelError(KindSandboxRestricted, "you can only send testing emails"),
	}}
	secondary := &routingChannel{name: "secondary"}
	d := newTestDeliverer(primary, secondary)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	assert.Equal(t, StatusDegraded, outcome.Status)
	assert.Equal(t, ReasonSandboxRestricted, outcome.Reason)
	assert.Equal(t, 1, primary.sentTo(clinicAddr), "delivered clinic alert must not be re-sent")
	assert.Equal(t, 0, secondary.totalSent(), "sandbox-forfeited parent must not ride the relay")
}

func TestDeliverSandboxOnClinicFallsBackToRelayClinicOnly(t *testing.T) {
	primary := &routingChannel{name: "primary", fail: map[string]error{
		clinicAddr: NewChannelError(KindSandboxRestricted, "domain is not verified"),
		parentAddr: NewChannelError(KindSandboxRestricted, "domain is not verified"),
	}}
	secondary := &routingChannel{name: "secondary"}
	d := newTestDeliverer(primary, secondary)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	assert.Equal(t, StatusDegraded, outcome.Status)
	assert.Equal(t, ReasonSandboxRestricted, outcome.Reason)
	// Initial dual send plus one clinic-only degrade attempt, no retries of
	// the non-retriable sandbox error.
	assert.Equal(t, 2, primary.sentTo(clinicAddr))
	assert.Equal(t, 1, primary.sentTo(parentAddr))
	assert.Equal(t, 1, secondary.sentTo(clinicAddr))
	assert.Equal(t, 0, secondary.sentTo(parentAddr))
}

func TestDeliverNonSandboxFailureUsesRelayForAllRecipients(t *testing.T) {
	primary := &routingChannel{name: "primary", fail: map[string]error{
		clinicAddr: NewChannelError(KindTransient, "gateway timeout"),
		parentAddr: NewChannelError(KindTransient, "gateway timeout"),
	}}
	secondary := &routingChannel{name: "secondary"}
	d := newTestDeliverer(primary, secondary)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	assert.Equal(t, StatusFullSuccess, outcome.Status, "a healthy relay restores full delivery")
	assert.Equal(t, 1, secondary.sentTo(clinicAddr))
	assert.Equal(t, 1, secondary.sentTo(parentAddr))
}

func TestDeliverRelayRecoversParentConfirmation(t *testing.T) {
	primary := &routingChannel{name: "primary", fail: map[string]error{
		parentAddr: NewChannelError(KindTransient, "mailbox busy"),
	}}
	secondary := &routingChannel{name: "secondary"}
	d := newTestDeliverer(primary, secondary)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	assert.Equal(t, StatusFullSuccess, outcome.Status)
	assert.Equal(t, 1, primary.sentTo(clinicAddr))
	assert.Equal(t, 0, secondary.sentTo(clinicAddr), "delivered clinic alert must not be re-sent")
	assert.Equal(t, 1, secondary.sentTo(parentAddr))
}

func TestDeliverFailureCarriesOriginalPrimaryError(t *testing.T) {
	primaryErr := NewChannelError(KindAuthOrConfig, "invalid api key")
	primary := &routingChannel{name: "primary", fail: map[string]error{
		clinicAddr: primaryErr,
		parentAddr: primaryErr,
	}}
	secondary := &routingChannel{name: "secondary", fail: map[string]error{
		clinicAddr: NewChannelError(KindAuthOrConfig, "relay rejected credentials"),
	}}
	d := newTestDeliverer(primary, secondary)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	require.Equal(t, StatusFailure, outcome.Status)
	assert.False(t, outcome.Delivered())
	assert.Same(t, primaryErr, outcome.Err, "the original primary error must surface, not the relay's")
}

func TestDeliverFailureWithoutRelay(t *testing.T) {
	primaryErr := NewChannelError(KindAuthOrConfig, "invalid api key")
	primary := &routingChannel{name: "primary", fail: map[string]error{
		clinicAddr: primaryErr,
		parentAddr: primaryErr,
	}}
	d := newTestDeliverer(primary, nil)
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	require.Equal(t, StatusFailure, outcome.Status)
	assert.Same(t, primaryErr, outcome.Err)
}

func TestDeliverWithoutPrimaryChannelFails(t *testing.T) {
	d := newTestDeliverer(nil, &routingChannel{name: "secondary"})
	clinic, parent := testMessages()

	outcome := d.Deliver(context.Background(), clinic, parent)

	require.Equal(t, StatusFailure, outcome.Status)
	assert.Equal(t, KindAuthOrConfig, ErrKind(outcome.Err))
}

func TestDeliverDeadlineExceededIsFailure(t *testing.T) {
	primary := &routingChannel{name: "primary", fail: map[string]error{
		clinicAddr: NewChannelError(KindTransient, "gateway timeout"),
		parentAddr: NewChannelError(KindTransient, "gateway timeout"),
	}}
	secondary := &routingChannel{name: "secondary"}
	retry := NewRetrySender(RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    time.Second,
	}, nil, nil)
	d := NewDeliverer(primary, secondary, retry, nil, nil)
	clinic, parent := testMessages()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	outcome := d.Deliver(ctx, clinic, parent)

	require.Equal(t, StatusFailure, outcome.Status)
	assert.Equal(t, ReasonTimeout, outcome.Reason)
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
	assert.Equal(t, 0, secondary.totalSent(), "an expired deadline must not reach the relay")
}
