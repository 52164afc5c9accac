package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Medicine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Dosage    string    `gorm:"size:100;not null" json:"dosage"`
	Time      string    `gorm:"size:100;not null" json:"time"` // free-form schedule, e.g. "after breakfast"
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
