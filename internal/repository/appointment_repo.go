package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]model.Appointment, error)
	FindByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error)
	FindLatestForDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Appointment, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
	CountByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status model.AppointmentStatus) (int64, error)
	SlotTaken(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error)
	UpdateStatus(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Complete persists the Completed transition together with the diagnosis
	// and the queued notifications in a single transaction.
	Complete(ctx context.Context, appointment *model.Appointment, diagnosis *model.Diagnosis, email *model.EmailOutbox, notification *model.Notification) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where("id = ?", id).
		First(&appointment).Error; err != nil {
		return nil, err
	}

	return &appointment, nil
}

func (r *appointmentRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0)
	if err := r.db.WithContext(ctx).
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("date, time").
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	return appointments, nil
}

func (r *appointmentRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0)
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("date, time").
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0)
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ? AND status = ?", doctorID, status).
		Order("date, time").
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	return appointments, nil
}

func (r *appointmentRepository) FindLatestForDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Order("created_at DESC").
		First(&appointment).Error; err != nil {
		return nil, err
	}

	return &appointment, nil
}

func (r *appointmentRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *appointmentRepository) CountByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status model.AppointmentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ?", doctorID, date, timeOfDay).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", appointment.ID).
		Update("status", appointment.Status).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, "id = ?", id).Error
}

func (r *appointmentRepository) Complete(ctx context.Context, appointment *model.Appointment, diagnosis *model.Diagnosis, email *model.EmailOutbox, notification *model.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Appointment{}).
			Where("id = ?", appointment.ID).
			Update("status", appointment.Status).Error; err != nil {
			return err
		}

		if err := tx.Create(diagnosis).Error; err != nil {
			return err
		}

		if email != nil {
			if err := tx.Create(email).Error; err != nil {
				return err
			}
		}

		if notification != nil {
			if err := tx.Create(notification).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
