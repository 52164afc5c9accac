package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
)

type fakeOutboxRepo struct {
	emails map[uuid.UUID]*model.EmailOutbox
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{emails: make(map[uuid.UUID]*model.EmailOutbox)}
}

func (r *fakeOutboxRepo) Enqueue(ctx context.Context, email *model.EmailOutbox) error {
	if email.ID == uuid.Nil {
		email.ID = uuid.New()
	}
	if email.Status == "" {
		email.Status = model.OutboxPending
	}
	stored := *email
	r.emails[email.ID] = &stored
	return nil
}

func (r *fakeOutboxRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.EmailOutbox, error) {
	due := make([]model.EmailOutbox, 0)
	for _, email := range r.emails {
		if email.Status == model.OutboxPending && !email.NextAttemptAt.After(now) {
			due = append(due, *email)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (r *fakeOutboxRepo) MarkSent(ctx context.Context, email *model.EmailOutbox, sentAt time.Time) error {
	stored := r.emails[email.ID]
	stored.Status = model.OutboxSent
	stored.SentAt = &sentAt
	return nil
}

func (r *fakeOutboxRepo) MarkFailedAttempt(ctx context.Context, email *model.EmailOutbox) error {
	stored := r.emails[email.ID]
	stored.Status = email.Status
	stored.Attempts = email.Attempts
	stored.LastError = email.LastError
	stored.NextAttemptAt = email.NextAttemptAt
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func enqueueDue(t *testing.T, repo *fakeOutboxRepo) *model.EmailOutbox {
	t.Helper()
	email := &model.EmailOutbox{
		Recipient:     "jdoe@example.com",
		Subject:       "Diagnosis from Dr. drhouse",
		Body:          "rest and hydration",
		Status:        model.OutboxPending,
		NextAttemptAt: time.Now().Add(-time.Second),
	}
	if err := repo.Enqueue(context.Background(), email); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return email
}

func TestDispatchOnceSendsDueEmail(t *testing.T) {
	repo := newFakeOutboxRepo()
	sender := &fakeSender{}
	dispatcher := NewOutboxDispatcher(repo, sender, time.Second)

	email := enqueueDue(t, repo)

	if err := dispatcher.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0] != "jdoe@example.com" {
		t.Fatalf("sent = %v, want one email to jdoe@example.com", sender.sent)
	}

	stored := repo.emails[email.ID]
	if stored.Status != model.OutboxSent {
		t.Errorf("status = %s, want sent", stored.Status)
	}
	if stored.SentAt == nil {
		t.Error("sent_at was not recorded")
	}
}

func TestDispatchOnceSkipsFutureEmails(t *testing.T) {
	repo := newFakeOutboxRepo()
	sender := &fakeSender{}
	dispatcher := NewOutboxDispatcher(repo, sender, time.Second)

	email := &model.EmailOutbox{
		Recipient:     "jdoe@example.com",
		Subject:       "s",
		Body:          "b",
		Status:        model.OutboxPending,
		NextAttemptAt: time.Now().Add(time.Hour),
	}
	if err := repo.Enqueue(context.Background(), email); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := dispatcher.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d emails not yet due", len(sender.sent))
	}
}

func TestDispatchOnceRecordsFailureWithBackoff(t *testing.T) {
	repo := newFakeOutboxRepo()
	sender := &fakeSender{err: errors.New("relay unreachable")}
	dispatcher := NewOutboxDispatcher(repo, sender, time.Second)

	email := enqueueDue(t, repo)
	before := time.Now()

	if err := dispatcher.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.emails[email.ID]
	if stored.Status != model.OutboxPending {
		t.Errorf("status = %s, want pending for retry", stored.Status)
	}
	if stored.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", stored.Attempts)
	}
	if stored.LastError != "relay unreachable" {
		t.Errorf("last_error = %q", stored.LastError)
	}
	if stored.NextAttemptAt.Before(before.Add(outboxBaseBackoff)) {
		t.Errorf("next attempt %v is sooner than the base backoff", stored.NextAttemptAt)
	}
}

func TestDispatchGivesUpAfterMaxAttempts(t *testing.T) {
	repo := newFakeOutboxRepo()
	sender := &fakeSender{err: errors.New("relay unreachable")}
	dispatcher := NewOutboxDispatcher(repo, sender, time.Second)

	email := enqueueDue(t, repo)

	for i := 0; i < outboxMaxAttempts; i++ {
		// Pull the retry time back so the email is always due.
		repo.emails[email.ID].NextAttemptAt = time.Now().Add(-time.Second)
		if err := dispatcher.DispatchOnce(context.Background()); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}

	stored := repo.emails[email.ID]
	if stored.Status != model.OutboxFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.Attempts != outboxMaxAttempts {
		t.Errorf("attempts = %d, want %d", stored.Attempts, outboxMaxAttempts)
	}

	// A failed email is never claimed again.
	sender.err = nil
	if err := dispatcher.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("failed email was retried after giving up")
	}
}

func TestBackoffDoubles(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
	}
	for _, tc := range cases {
		if got := backoffFor(tc.attempts); got != tc.want {
			t.Errorf("backoffFor(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestDispatchOnceWithoutSenderIsNoop(t *testing.T) {
	repo := newFakeOutboxRepo()
	dispatcher := NewOutboxDispatcher(repo, nil, time.Second)

	email := enqueueDue(t, repo)

	if err := dispatcher.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.emails[email.ID].Status != model.OutboxPending {
		t.Error("email state changed without a configured sender")
	}
}
