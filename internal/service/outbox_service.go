package service

import (
	"context"
	"log"
	"time"

	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/pkg/mail"
)

const (
	outboxBatchSize   = 20
	outboxMaxAttempts = 5
	outboxBaseBackoff = time.Minute
)

// OutboxDispatcher drains the email outbox in the background so SMTP latency
// and failures stay off the request path.
type OutboxDispatcher struct {
	repo     repository.OutboxRepository
	sender   mail.Sender
	interval time.Duration
}

func NewOutboxDispatcher(repo repository.OutboxRepository, sender mail.Sender, interval time.Duration) *OutboxDispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &OutboxDispatcher{
		repo:     repo,
		sender:   sender,
		interval: interval,
	}
}

// Run loops until ctx is cancelled. Intended to be started as a goroutine.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.DispatchOnce(ctx); err != nil {
				log.Printf("outbox dispatch error: %v", err)
			}
		}
	}
}

// DispatchOnce claims all due pending emails and attempts delivery for each.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) error {
	if d.sender == nil {
		return nil
	}

	now := time.Now()
	due, err := d.repo.ClaimDue(ctx, now, outboxBatchSize)
	if err != nil {
		return err
	}

	for i := range due {
		email := &due[i]
		if err := d.sender.Send(email.Recipient, email.Subject, email.Body); err != nil {
			d.recordFailure(ctx, email, err)
			continue
		}

		if err := d.repo.MarkSent(ctx, email, time.Now()); err != nil {
			log.Printf("failed to mark outbox email %s as sent: %v", email.ID, err)
		}
	}

	return nil
}

func (d *OutboxDispatcher) recordFailure(ctx context.Context, email *model.EmailOutbox, sendErr error) {
	email.Attempts++
	email.LastError = sendErr.Error()

	if email.Attempts >= outboxMaxAttempts {
		email.Status = model.OutboxFailed
		log.Printf("giving up on outbox email %s after %d attempts: %v", email.ID, email.Attempts, sendErr)
	} else {
		email.Status = model.OutboxPending
		email.NextAttemptAt = time.Now().Add(backoffFor(email.Attempts))
	}

	if err := d.repo.MarkFailedAttempt(ctx, email); err != nil {
		log.Printf("failed to record outbox failure for %s: %v", email.ID, err)
	}
}

// backoffFor doubles the delay with each attempt: 1m, 2m, 4m, 8m...
func backoffFor(attempts int) time.Duration {
	backoff := outboxBaseBackoff
	for i := 1; i < attempts; i++ {
		backoff *= 2
	}
	return backoff
}
