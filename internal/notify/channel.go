// Package notify implements the booking notification pipeline: content
// building, delivery channels, bounded-retry sending and the orchestrated
// fallback across channels.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Message is one email bound to a single recipient.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string // plain text body
	HTML    string // optional HTML body
}

// Channel sends a single message over one transport. Implementations make
// exactly one outbound call per invocation and never retry internally;
// retry is the RetrySender's responsibility.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// ErrorKind classifies a channel failure. Raw provider errors are mapped to
// kinds at the channel boundary so the orchestrator only reasons over types.
type ErrorKind string

const (
	// KindRateLimited means the provider throttled the request.
	KindRateLimited ErrorKind = "rate_limited"
	// KindSandboxRestricted means the provider refuses delivery to
	// unverified or non-allowlisted recipients. A configuration condition,
	// not a system failure.
	KindSandboxRestricted ErrorKind = "sandbox_restricted"
	// KindAuthOrConfig means credentials or configuration are missing or
	// invalid. Fatal for this channel.
	KindAuthOrConfig ErrorKind = "auth_or_config"
	// KindTransient covers network failures and provider 5xx responses.
	KindTransient ErrorKind = "transient"
	// KindUnknown is everything else.
	KindUnknown ErrorKind = "unknown"
)

// ChannelError is a classified channel failure.
type ChannelError struct {
	Kind      ErrorKind
	Retriable bool
	Detail    string
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// NewChannelError builds a ChannelError with the retriability implied by its
// kind. Rate limits and transient faults can clear on their own; sandbox
// restrictions and credential problems cannot, so retrying them only burns
// the caller's latency budget.
func NewChannelError(kind ErrorKind, detail string) *ChannelError {
	retriable := true
	switch kind {
	case KindAuthOrConfig, KindSandboxRestricted:
		retriable = false
	}
	return &ChannelError{Kind: kind, Retriable: retriable, Detail: detail}
}

// IsRetriable reports whether another attempt on the same channel could
// succeed. Unclassified errors are assumed retriable.
func IsRetriable(err error) bool {
	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce.Retriable
	}
	return true
}

// IsSandboxRestricted reports whether err is a provider sandbox restriction.
func IsSandboxRestricted(err error) bool {
	var ce *ChannelError
	return errors.As(err, &ce) && ce.Kind == KindSandboxRestricted
}

// ErrKind extracts the classified kind, or KindUnknown.
func ErrKind(err error) ErrorKind {
	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
