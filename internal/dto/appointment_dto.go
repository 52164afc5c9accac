package dto

import (
	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
)

type BookAppointmentRequest struct {
	DoctorUsername string `json:"doctor_username" binding:"required"`
	Date           string `json:"date" binding:"required,datetime=2006-01-02"`
	Time           string `json:"time" binding:"required,datetime=15:04"`
	Reason         string `json:"reason" binding:"required,max=200"`
}

type SolveAppointmentRequest struct {
	Diagnosis string `json:"diagnosis" binding:"required"`
}

type AppointmentSummaryResponse struct {
	Total     int64               `json:"total"`
	Completed int64               `json:"completed"`
	Upcoming  []model.Appointment `json:"upcoming"`
}

type ReportListResponse struct {
	Reports             []model.Report `json:"reports"`
	LatestAppointmentID *uuid.UUID     `json:"latest_appointment_id,omitempty"`
}
