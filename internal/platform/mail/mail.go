// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers transactional email.

Providers:

  - SMTP: any relay reachable over SMTP (STARTTLS when offered).
  - SES: Amazon Simple Email Service through the v2 API.
  - Log: development only, writes the message to the structured log.

Every provider implements [Mailer]. [Async] wraps one so request handlers never
wait on a remote mail server.
*/
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrClosed is returned by [Async.Send] after [Async.Close] has been called.
var ErrClosed = errors.New("mail: dispatcher closed")

// Message is a single outgoing email with a plain-text and an HTML part.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a message or reports why it could not.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a [LogMailer] writing to logger.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send implements [Mailer].
func (mailer *LogMailer) Send(ctx context.Context, message Message) error {
	if message.To == "" {
		return fmt.Errorf("mail: recipient is required")
	}

	mailer.logger.InfoContext(ctx, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("text", message.Text),
	)
	return nil
}
