// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Async hands messages to a background goroutine and returns at once.
//
// Delivery failures are logged, never returned. [Async.Close] waits for
// in-flight deliveries during shutdown.
type Async struct {
	next    Mailer
	logger  *slog.Logger
	timeout time.Duration

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

// NewAsync wraps next. Each delivery gets its own timeout, detached from the
// request that triggered it.
func NewAsync(next Mailer, logger *slog.Logger, timeout time.Duration) *Async {
	return &Async{next: next, logger: logger, timeout: timeout}
}

// Send implements [Mailer]. It only fails once the dispatcher is closed.
func (dispatcher *Async) Send(ctx context.Context, message Message) error {
	dispatcher.mu.Lock()
	if dispatcher.closed {
		dispatcher.mu.Unlock()
		return ErrClosed
	}
	dispatcher.inFlight.Add(1)
	dispatcher.mu.Unlock()

	deliveryCtx := context.WithoutCancel(ctx)

	go func() {
		defer dispatcher.inFlight.Done()

		sendCtx, cancel := context.WithTimeout(deliveryCtx, dispatcher.timeout)
		defer cancel()

		if err := dispatcher.next.Send(sendCtx, message); err != nil {
			dispatcher.logger.ErrorContext(sendCtx, "mail_delivery_failed",
				slog.String("subject", message.Subject),
				slog.Any("error", err),
			)
			return
		}

		dispatcher.logger.DebugContext(sendCtx, "mail_delivered", slog.String("subject", message.Subject))
	}()

	return nil
}

// Close stops accepting messages and waits for pending deliveries or ctx.
func (dispatcher *Async) Close(ctx context.Context) error {
	dispatcher.mu.Lock()
	dispatcher.closed = true
	dispatcher.mu.Unlock()

	done := make(chan struct{})
	go func() {
		dispatcher.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
