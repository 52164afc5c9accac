package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
	"gorm.io/gorm"
)

type MedicineRepository interface {
	Create(ctx context.Context, medicine *model.Medicine) error
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Medicine, error)
}

type medicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) MedicineRepository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *model.Medicine) error {
	return r.db.WithContext(ctx).Create(medicine).Error
}

func (r *medicineRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Medicine, error) {
	medicines := make([]model.Medicine, 0)
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at").
		Find(&medicines).Error; err != nil {
		return nil, err
	}

	return medicines, nil
}
