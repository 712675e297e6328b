package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// SendGridChannel sends emails via the SendGrid API. It is the primary
// transactional channel.
type SendGridChannel struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridChannel creates a SendGrid channel, or nil when no API key is
// configured.
func NewSendGridChannel(cfg SendGridConfig, logger *logging.Logger) *SendGridChannel {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Tots and Teens Bookings"
	}
	return &SendGridChannel{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Name identifies the channel in logs and metrics.
func (s *SendGridChannel) Name() string { return "sendgrid" }

// Send makes one API call and classifies the result.
func (s *SendGridChannel) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return NewChannelError(KindAuthOrConfig, "sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	var message *mail.SGMailV3
	if msg.HTML != "" {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.HTML)
	} else {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return NewChannelError(KindTransient, fmt.Sprintf("sendgrid send failed: %v", err))
	}

	if response.StatusCode >= 400 {
		cerr := classifySendGridResponse(response.StatusCode, response.Body)
		s.logger.Error("sendgrid returned error status",
			"status", response.StatusCode, "kind", cerr.Kind, "to", msg.To)
		return cerr
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

// sandboxPhrases are the provider messages that indicate delivery was refused
// because the sending domain is unverified. String matching is confined to
// this adapter; everything downstream sees only the classified kind.
var sandboxPhrases = []string{
	"you can only send testing emails",
	"verify a domain",
	"domain is not verified",
	"sender identity",
}

func isSandboxDetail(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range sandboxPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func classifySendGridResponse(status int, body string) *ChannelError {
	detail := fmt.Sprintf("sendgrid returned status %d: %s", status, truncate(body, 200))
	switch {
	case isSandboxDetail(body):
		return NewChannelError(KindSandboxRestricted, detail)
	case status == 429:
		return NewChannelError(KindRateLimited, detail)
	case status == 401 || status == 403:
		return NewChannelError(KindAuthOrConfig, detail)
	case status >= 500:
		return NewChannelError(KindTransient, detail)
	default:
		return NewChannelError(KindUnknown, detail)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ Channel = (*SendGridChannel)(nil)
