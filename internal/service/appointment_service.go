package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AppointmentService interface {
	Book(ctx context.Context, patientID uuid.UUID, input dto.BookAppointmentRequest) (*model.Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error)
	Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) error
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]model.Appointment, error)
	Summary(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentSummaryResponse, error)
	UpdateStatus(ctx context.Context, doctorID, appointmentID uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error)
	Solve(ctx context.Context, doctorID, appointmentID uuid.UUID, input dto.SolveAppointmentRequest) (*model.Appointment, error)
}

type appointmentService struct {
	appointments  repository.AppointmentRepository
	users         repository.UserRepository
	notifications NotificationService
	redisClient   *redis.Client
	sanitizer     *bluemonday.Policy
	bookWindow    time.Duration
}

func NewAppointmentService(appointments repository.AppointmentRepository, users repository.UserRepository, notifications NotificationService, redisClient *redis.Client) AppointmentService {
	return &appointmentService{
		appointments:  appointments,
		users:         users,
		notifications: notifications,
		redisClient:   redisClient,
		sanitizer:     bluemonday.StrictPolicy(),
		bookWindow:    10 * time.Second,
	}
}

func (s *appointmentService) Book(ctx context.Context, patientID uuid.UUID, input dto.BookAppointmentRequest) (*model.Appointment, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, patientID, "book_appointment", s.bookWindow)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("you are booking too fast, please wait: %w", apperror.ErrRateLimitExceeded)
	}

	doctor, err := s.users.FindByUsername(ctx, input.DoctorUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("doctor %s not found: %w", input.DoctorUsername, apperror.ErrNotFound)
		}
		return nil, err
	}
	if !doctor.IsDoctor() {
		return nil, fmt.Errorf("%s is not a doctor: %w", input.DoctorUsername, apperror.ErrBadRequest)
	}

	// Friendly pre-check; the composite unique index on (doctor, date, time)
	// is what actually closes the race between check and insert.
	taken, err := s.appointments.SlotTaken(ctx, doctor.ID, input.Date, input.Time)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("this time slot is already booked with the selected doctor: %w", apperror.ErrConflict)
	}

	appointment := &model.Appointment{
		PatientID: patientID,
		DoctorID:  doctor.ID,
		Date:      input.Date,
		Time:      input.Time,
		Reason:    s.sanitizer.Sanitize(input.Reason),
		Status:    model.StatusUpcoming,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("this time slot is already booked with the selected doctor: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	appointment.Doctor = doctor
	return appointment, nil
}

func (s *appointmentService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error) {
	return s.appointments.FindByPatient(ctx, patientID)
}

func (s *appointmentService) Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) error {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("appointment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if appointment.PatientID != patientID {
		return fmt.Errorf("you can only cancel your own appointments: %w", apperror.ErrForbidden)
	}

	return s.appointments.Delete(ctx, appointmentID)
}

func (s *appointmentService) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]model.Appointment, error) {
	return s.appointments.FindByDoctor(ctx, doctorID)
}

func (s *appointmentService) Summary(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentSummaryResponse, error) {
	total, err := s.appointments.CountByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	completed, err := s.appointments.CountByDoctorAndStatus(ctx, doctorID, model.StatusCompleted)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.appointments.FindByDoctorAndStatus(ctx, doctorID, model.StatusUpcoming)
	if err != nil {
		return nil, err
	}

	return &dto.AppointmentSummaryResponse{
		Total:     total,
		Completed: completed,
		Upcoming:  upcoming,
	}, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, doctorID, appointmentID uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if appointment.DoctorID != doctorID {
		return nil, fmt.Errorf("appointment is assigned to another doctor: %w", apperror.ErrForbidden)
	}

	if err := appointment.Transition(to); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrConflict)
	}

	if err := s.appointments.UpdateStatus(ctx, appointment); err != nil {
		return nil, err
	}

	return appointment, nil
}

func (s *appointmentService) Solve(ctx context.Context, doctorID, appointmentID uuid.UUID, input dto.SolveAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if appointment.DoctorID != doctorID {
		return nil, fmt.Errorf("appointment is assigned to another doctor: %w", apperror.ErrForbidden)
	}

	if err := appointment.Transition(model.StatusCompleted); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrConflict)
	}

	diagnosisText := s.sanitizer.Sanitize(input.Diagnosis)
	apptID := appointment.ID
	diagnosis := &model.Diagnosis{
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		AppointmentID: &apptID,
		DiagnosisText: diagnosisText,
	}

	var email *model.EmailOutbox
	var notification *model.Notification
	if appointment.Patient != nil && appointment.Doctor != nil {
		email = &model.EmailOutbox{
			Recipient: appointment.Patient.Email,
			Subject:   fmt.Sprintf("Diagnosis from Dr. %s", appointment.Doctor.Username),
			Body:      diagnosisEmailBody(appointment, diagnosisText),
		}
		notification = &model.Notification{
			UserID:   appointment.PatientID,
			ActorID:  appointment.DoctorID,
			EntityID: appointment.ID,
			Type:     model.NotificationDiagnosisReady,
			Message:  fmt.Sprintf("Dr. %s reviewed your appointment on %s at %s", appointment.Doctor.Username, appointment.Date, appointment.Time),
		}
	}

	if err := s.appointments.Complete(ctx, appointment, diagnosis, email, notification); err != nil {
		return nil, err
	}

	if notification != nil && s.notifications != nil {
		s.notifications.Publish(ctx, notification)
	}

	return appointment, nil
}

func diagnosisEmailBody(appointment *model.Appointment, diagnosisText string) string {
	return fmt.Sprintf(`Dear %s,

Your appointment on %s at %s regarding %q has been reviewed.

Diagnosis:
%s

Regards,
MedTrack Team
`, appointment.Patient.Username, appointment.Date, appointment.Time, appointment.Reason, diagnosisText)
}
