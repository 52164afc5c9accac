package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
	"gorm.io/gorm"
)

type DiagnosisRepository interface {
	Create(ctx context.Context, diagnosis *model.Diagnosis) error
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Diagnosis, error)
}

type diagnosisRepository struct {
	db *gorm.DB
}

func NewDiagnosisRepository(db *gorm.DB) DiagnosisRepository {
	return &diagnosisRepository{db: db}
}

func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *model.Diagnosis) error {
	return r.db.WithContext(ctx).Create(diagnosis).Error
}

func (r *diagnosisRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Diagnosis, error) {
	diagnoses := make([]model.Diagnosis, 0)
	if err := r.db.WithContext(ctx).
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&diagnoses).Error; err != nil {
		return nil, err
	}

	return diagnoses, nil
}
