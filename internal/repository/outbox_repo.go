package repository

import (
	"context"
	"time"

	"github.com/medtrackhq/medtrack/internal/model"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, email *model.EmailOutbox) error
	// ClaimDue returns pending emails whose next attempt time has passed,
	// oldest first, capped at limit.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.EmailOutbox, error)
	MarkSent(ctx context.Context, email *model.EmailOutbox, sentAt time.Time) error
	MarkFailedAttempt(ctx context.Context, email *model.EmailOutbox) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, email *model.EmailOutbox) error {
	return r.db.WithContext(ctx).Create(email).Error
}

func (r *outboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.EmailOutbox, error) {
	emails := make([]model.EmailOutbox, 0)
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", model.OutboxPending, now).
		Order("next_attempt_at").
		Limit(limit).
		Find(&emails).Error; err != nil {
		return nil, err
	}

	return emails, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, email *model.EmailOutbox, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.EmailOutbox{}).
		Where("id = ?", email.ID).
		Updates(map[string]interface{}{
			"status":  model.OutboxSent,
			"sent_at": sentAt,
		}).Error
}

func (r *outboxRepository) MarkFailedAttempt(ctx context.Context, email *model.EmailOutbox) error {
	return r.db.WithContext(ctx).
		Model(&model.EmailOutbox{}).
		Where("id = ?", email.ID).
		Updates(map[string]interface{}{
			"status":          email.Status,
			"attempts":        email.Attempts,
			"last_error":      email.LastError,
			"next_attempt_at": email.NextAttemptAt,
		}).Error
}
