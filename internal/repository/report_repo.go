package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Report, error)
	FindByFilename(ctx context.Context, filename string) (*model.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Report, error) {
	reports := make([]model.Report, 0)
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *reportRepository) FindByFilename(ctx context.Context, filename string) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).
		Where("filename = ?", filename).
		First(&report).Error; err != nil {
		return nil, err
	}

	return &report, nil
}
