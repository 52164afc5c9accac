package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus is the closed set of appointment lifecycle states.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusAccepted  AppointmentStatus = "Accepted"
	StatusRejected  AppointmentStatus = "Rejected"
	StatusUpcoming  AppointmentStatus = "Upcoming"
	StatusCompleted AppointmentStatus = "Completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusUpcoming, StatusCompleted:
		return true
	}
	return false
}

// allowedTransitions is the guard table for status changes. Anything not
// listed here is rejected before it reaches storage.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusUpcoming: {StatusCompleted},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_slot" json:"doctor_id"`
	Date      string            `gorm:"size:20;not null;uniqueIndex:idx_slot" json:"date"` // YYYY-MM-DD
	Time      string            `gorm:"size:20;not null;uniqueIndex:idx_slot" json:"time"` // HH:MM
	Reason    string            `gorm:"size:200" json:"reason"`
	Status    AppointmentStatus `gorm:"size:20;not null;default:'Pending'" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`

	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Transition moves the appointment to the given status, enforcing the guard
// table. The receiver is only mutated on success.
func (a *Appointment) Transition(to AppointmentStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown appointment status %q", to)
	}
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("cannot transition appointment from %s to %s", a.Status, to)
	}
	a.Status = to
	return nil
}
