// Package notify sends member notifications by email.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/codeGROOVE-dev/gymassist/pkg/config"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

// EnrollmentSubject is the subject of the welcome email.
const EnrollmentSubject = "Gym Membership Enrollment Confirmation"

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Enrollment builds the confirmation email for a new member.
func Enrollment(m model.Member) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", m.FirstName)
	b.WriteString("We are excited to welcome you to Anytime Fitness! Your enrollment in our gym's membership program is confirmed, and we're thrilled to have you on board.\n\n")
	b.WriteString("Here are your enrollment details:\n\n")
	fmt.Fprintf(&b, "Customer ID: %s\n", m.CustomerID)
	fmt.Fprintf(&b, "Membership Plan: %s\n\n", m.MembershipPlan)
	b.WriteString("We're committed to helping you achieve your fitness goals and providing you with a positive gym experience. If you have any questions or need assistance, feel free to reach out to our team or talk to AnytimeAssistant, our personalized chatbot.\n\n")
	b.WriteString("Once again, welcome to Anytime Fitness! We can't wait to see you at the gym and support you on your fitness journey.\n\n")
	b.WriteString("Best regards,\nAnytime Fitness Team")
	return Message{To: m.Email, Subject: EnrollmentSubject, Body: b.String()}
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay. smtp.SendMail upgrades to
// STARTTLS when the server offers it; PLAIN auth is only sent over TLS or to
// localhost.
type SMTPSender struct {
	send     sendFunc
	logger   *slog.Logger
	now      func() time.Time
	from     mail.Address
	addr     string
	auth     smtp.Auth
	attempts uint
	delay    time.Duration
}

// Option configures an SMTPSender.
type Option func(*SMTPSender)

// WithRetry bounds delivery attempts and sets the initial backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(s *SMTPSender) {
		s.attempts = max(attempts, 1)
		s.delay = delay
	}
}

// NewSMTPSender creates a sender for cfg. cfg.Host must be set.
func NewSMTPSender(cfg config.SMTPConfig, logger *slog.Logger, opts ...Option) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is not configured")
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid smtp from address %q: %w", cfg.From, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &SMTPSender{
		send:     smtp.SendMail,
		logger:   logger,
		now:      time.Now,
		from:     mail.Address{Name: cfg.FromName, Address: cfg.From},
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		attempts: 3,
		delay:    time.Second,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send delivers msg, retrying transient failures.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	raw, err := s.compose(to, msg)
	if err != nil {
		return err
	}

	err = retry.Do(
		func() error {
			return s.send(s.addr, s.auth, s.from.Address, []string{to.Address}, raw)
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			// 5xx replies are permanent.
			var tpErr *textproto.Error
			if errors.As(err, &tpErr) {
				return tpErr.Code < 500
			}
			return true
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("retrying email delivery", "to", to.Address, "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("sending mail to %s: %w", to.Address, err)
	}
	s.logger.Info("email sent", "to", to.Address, "subject", msg.Subject)
	return nil
}

func (s *SMTPSender) compose(to *mail.Address, msg Message) ([]byte, error) {
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return nil, errors.New("subject contains a line break")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return buf.Bytes(), nil
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements Sender.
func (l LogSender) Send(_ context.Context, msg Message) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email not sent: smtp is not configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Dispatcher sends messages in the background.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher bounding each delivery by timeout.
func NewDispatcher(sender Sender, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sender: sender, logger: logger, timeout: timeout}
}

// Go sends msg without blocking. Failures are logged.
func (d *Dispatcher) Go(ctx context.Context, msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warn("failed to send email", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
