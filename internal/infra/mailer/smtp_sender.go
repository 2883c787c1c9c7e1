package mailer

import (
	"context"
	"fmt"

	"events_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// Config holds the SMTP settings of the reminder sender.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers reminder emails through an SMTP relay. A mail.Client
// owns a single connection and must not be shared between goroutines, so
// every reminder dials with its own client.
type SMTPSender struct {
	host   string
	opts   []mail.Option
	from   string
	logger *logrus.Entry
}

func NewSMTPSender(cfg Config, logger *logrus.Entry) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	s := &SMTPSender{host: cfg.Host, opts: opts, from: cfg.From, logger: logger}
	if _, err := s.newClient(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SMTPSender) newClient() (*mail.Client, error) {
	client, err := mail.NewClient(s.host, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// SendReminder renders the reminder for payload and sends it to a single
// recipient.
func (s *SMTPSender) SendReminder(ctx context.Context, to string, payload notification.EmailPayload) error {
	msg, err := s.buildMessage(to, payload)
	if err != nil {
		return err
	}

	client, err := s.newClient()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", to, err)
	}
	s.logger.WithFields(logrus.Fields{"to": to, "event_name": payload.EventName}).Debug("Reminder email sent")
	return nil
}

func (s *SMTPSender) buildMessage(to string, payload notification.EmailPayload) (*mail.Msg, error) {
	body, err := renderReminder(payload)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(fmt.Sprintf(reminderSubject, payload.EventName))
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}
