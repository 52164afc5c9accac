package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationDiagnosisReady    = "diagnosis_ready"
	NotificationAppointmentStatus = "appointment_status"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // user who receives the notification
	ActorID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`      // user who triggered it
	EntityID  uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`     // appointment or diagnosis ID
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations - using pointers to avoid recursion if User has Notifications
	User  *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
