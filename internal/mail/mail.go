// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package mail delivers transactional email such as registration codes.
//
// SMTPSender talks to a real relay. LogSender writes messages to the
// application log and is used when email is disabled (development, demos).
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/metrics"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("mail: no recipient")

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTPSender when email is enabled and a LogSender otherwise.
func New(cfg *config.EmailConfig) Sender {
	if cfg == nil || !cfg.Enabled {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}

// SMTPSender delivers mail over SMTP with opportunistic STARTTLS.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	timeout  time.Duration
}

// NewSMTPSender creates an SMTP sender from config.
func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  15 * time.Second,
	}
}

// Send delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	err := s.send(ctx, msg)
	metrics.RecordMailSent(err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("to", msg.To).Msg("Mail delivery failed")
	}
	return err
}

func (s *SMTPSender) send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if s.username != "" && s.password != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(s.from, s.fromName, msg, time.Now()))); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// The message is accepted once DATA completes.
	_ = client.Quit()
	return nil
}

// buildMessage renders headers and a plain text body.
func buildMessage(from, fromName string, msg Message, now time.Time) string {
	if fromName == "" {
		fromName = "Fly Fitness Zone"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.String()
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

// Send logs msg at info level.
func (LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	logging.Ctx(ctx).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("Email delivery disabled, message logged")
	metrics.RecordMailSent(nil)
	return nil
}
