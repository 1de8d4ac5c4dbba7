// Package mail delivers notification and reply emails.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"portfolio/internal/config"
	"portfolio/internal/observability"
)

// Message is one outgoing email. HTML is the body.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Validate checks the envelope fields.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From) == "" || strings.TrimSpace(m.To) == "" {
		return errors.New("mail: from and to are required")
	}
	if strings.ContainsAny(m.Subject, "\r\n") || strings.ContainsAny(m.ReplyTo, "\r\n") {
		return errors.New("mail: header values must not contain line breaks")
	}
	return nil
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "mail not delivered (log transport)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	observability.MailDispatches.WithLabelValues("log", "ok").Inc()
	return nil
}

// NewSender picks the transport named by MAIL_TRANSPORT. The returned closer
// releases transport resources and is never nil.
func NewSender(cfg *config.Config) (Sender, func() error, error) {
	switch strings.ToLower(cfg.MailTransport) {
	case "", "log":
		return LogSender{}, func() error { return nil }, nil
	case "smtp":
		return NewSMTPSender(SMTPOptionsFromConfig(cfg)), func() error { return nil }, nil
	case "kafka":
		q := NewKafkaQueue(cfg.KafkaBrokerList(), cfg.KafkaMailTopic)
		return q, q.Close, nil
	default:
		return nil, nil, fmt.Errorf("mail: unknown transport %q", cfg.MailTransport)
	}
}
