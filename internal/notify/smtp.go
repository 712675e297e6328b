package notify

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// SMTPChannel relays emails through a plain SMTP server. It is the secondary
// delivery channel, used only when the primary transactional channel fails.
type SMTPChannel struct {
	cfg    SMTPConfig
	logger *logging.Logger

	// sendMail is swapped in tests to avoid a real relay.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPConfig holds configuration for the SMTP relay. The relay is optional;
// with no host configured the channel reports an immediate configuration
// error instead of dialing.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// NewSMTPChannel creates the SMTP relay channel.
func NewSMTPChannel(cfg SMTPConfig, logger *logging.Logger) *SMTPChannel {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromName == "" {
		cfg.FromName = "Tots and Teens Bookings"
	}
	return &SMTPChannel{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

// Name identifies the channel in logs and metrics.
func (s *SMTPChannel) Name() string { return "smtp" }

// Configured reports whether a relay host is set.
func (s *SMTPChannel) Configured() bool {
	return s != nil && s.cfg.Host != ""
}

// Send relays one message. The context is honored up front; net/smtp itself
// does not take a context, and the surrounding deadline abandons the result.
func (s *SMTPChannel) Send(ctx context.Context, msg Message) error {
	if !s.Configured() {
		return NewChannelError(KindAuthOrConfig, "smtp relay not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	payload := s.buildPayload(msg)
	if err := s.sendMail(addr, auth, s.cfg.FromEmail, []string{msg.To}, payload); err != nil {
		cerr := classifySMTPError(err)
		s.logger.Error("smtp send failed", "error", err, "kind", cerr.Kind, "to", msg.To)
		return cerr
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject, "relay", s.cfg.Host)
	return nil
}

func (s *SMTPChannel) buildPayload(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	if msg.ToName != "" {
		fmt.Fprintf(&b, "To: %s <%s>\r\n", msg.ToName, msg.To)
	} else {
		fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	if msg.HTML != "" {
		b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(msg.HTML)
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(msg.Body)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

func classifySMTPError(err error) *ChannelError {
	detail := fmt.Sprintf("smtp send failed: %v", err)

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == 421 || tpErr.Code == 450 || tpErr.Code == 451 || tpErr.Code == 452:
			return NewChannelError(KindTransient, detail)
		case tpErr.Code == 530 || tpErr.Code == 534 || tpErr.Code == 535 || tpErr.Code == 538:
			return NewChannelError(KindAuthOrConfig, detail)
		case tpErr.Code >= 500:
			return NewChannelError(KindUnknown, detail)
		default:
			return NewChannelError(KindTransient, detail)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewChannelError(KindTransient, detail)
	}
	return NewChannelError(KindUnknown, detail)
}

var _ Channel = (*SMTPChannel)(nil)
