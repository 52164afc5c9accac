package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Diagnosis struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID *uuid.UUID `gorm:"type:uuid" json:"appointment_id,omitempty"` // set when written by solving an appointment
	DiagnosisText string     `gorm:"type:text;not null" json:"diagnosis_text"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Doctor      *User        `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient     *User        `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (d *Diagnosis) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
