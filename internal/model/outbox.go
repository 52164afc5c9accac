package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OutboxStatus tracks delivery progress of a queued email.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// EmailOutbox is a queued outbound email. Rows are inserted in the same
// transaction as the domain write that triggered them and delivered by the
// outbox dispatcher, so a slow or dead SMTP relay never stalls a request.
type EmailOutbox struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Recipient     string       `gorm:"size:100;not null" json:"recipient"`
	Subject       string       `gorm:"size:200;not null" json:"subject"`
	Body          string       `gorm:"type:text;not null" json:"body"`
	Status        OutboxStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	LastError     string       `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time    `gorm:"not null;index" json:"next_attempt_at"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	SentAt        *time.Time   `json:"sent_at,omitempty"`
}

func (e *EmailOutbox) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = time.Now()
	}
	return nil
}
