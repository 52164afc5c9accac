package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	Filename    string    `gorm:"size:200;not null" json:"filename"`
	FileURL     string    `gorm:"type:text;not null" json:"file_url"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
