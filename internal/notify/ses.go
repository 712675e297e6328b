package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// SESChannel sends emails via AWS SES. It is an alternate primary channel
// selected by configuration.
type SESChannel struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// NewSESChannel creates an SES channel, or nil without a client.
func NewSESChannel(client *sesv2.Client, cfg SESConfig, logger *logging.Logger) *SESChannel {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Tots and Teens Bookings"
	}
	return &SESChannel{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Name identifies the channel in logs and metrics.
func (s *SESChannel) Name() string { return "ses" }

// Send makes one SendEmail call and classifies the result.
func (s *SESChannel) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return NewChannelError(KindAuthOrConfig, "SES client not configured")
	}

	fromAddress := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{},
			},
		},
	}

	if msg.Body != "" {
		input.Content.Simple.Body.Text = &types.Content{
			Data:    aws.String(msg.Body),
			Charset: aws.String("UTF-8"),
		}
	}

	if msg.HTML != "" {
		input.Content.Simple.Body.Html = &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		}
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		cerr := classifySESError(err)
		s.logger.Error("SES send failed", "error", err, "kind", cerr.Kind, "to", msg.To)
		return cerr
	}

	s.logger.Info("email sent via SES", "to", msg.To, "subject", msg.Subject, "message_id", aws.ToString(output.MessageId))
	return nil
}

func classifySESError(err error) *ChannelError {
	detail := fmt.Sprintf("SES send failed: %v", err)

	var tooMany *types.TooManyRequestsException
	if errors.As(err, &tooMany) {
		return NewChannelError(KindRateLimited, detail)
	}
	var rejected *types.MessageRejected
	if errors.As(err, &rejected) {
		return NewChannelError(KindSandboxRestricted, detail)
	}
	var unverified *types.MailFromDomainNotVerifiedException
	if errors.As(err, &unverified) {
		return NewChannelError(KindSandboxRestricted, detail)
	}
	var suspended *types.AccountSuspendedException
	if errors.As(err, &suspended) {
		return NewChannelError(KindAuthOrConfig, detail)
	}
	var paused *types.SendingPausedException
	if errors.As(err, &paused) {
		return NewChannelError(KindAuthOrConfig, detail)
	}
	var badRequest *types.BadRequestException
	if errors.As(err, &badRequest) {
		return NewChannelError(KindUnknown, detail)
	}
	return NewChannelError(KindTransient, detail)
}

var _ Channel = (*SESChannel)(nil)
