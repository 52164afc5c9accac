package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// ClinicalService covers medicines, diagnoses and the patient history view
// built from both.
type ClinicalService interface {
	AddMedicine(ctx context.Context, patientID uuid.UUID, input dto.AddMedicineRequest) (*model.Medicine, error)
	ListMedicines(ctx context.Context, patientID uuid.UUID) ([]model.Medicine, error)
	AddDiagnosis(ctx context.Context, doctorID, patientID uuid.UUID, input dto.AddDiagnosisRequest) (*model.Diagnosis, error)
	ListDiagnoses(ctx context.Context, patientID uuid.UUID) ([]model.Diagnosis, error)
	PatientHistory(ctx context.Context, patientID uuid.UUID) (*dto.PatientHistoryResponse, error)
}

type clinicalService struct {
	medicines repository.MedicineRepository
	diagnoses repository.DiagnosisRepository
	users     repository.UserRepository
	sanitizer *bluemonday.Policy
}

func NewClinicalService(medicines repository.MedicineRepository, diagnoses repository.DiagnosisRepository, users repository.UserRepository) ClinicalService {
	return &clinicalService{
		medicines: medicines,
		diagnoses: diagnoses,
		users:     users,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *clinicalService) AddMedicine(ctx context.Context, patientID uuid.UUID, input dto.AddMedicineRequest) (*model.Medicine, error) {
	if _, err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}

	medicine := &model.Medicine{
		PatientID: patientID,
		Name:      input.Name,
		Dosage:    input.Dosage,
		Time:      input.Time,
	}

	if err := s.medicines.Create(ctx, medicine); err != nil {
		return nil, err
	}

	return medicine, nil
}

func (s *clinicalService) ListMedicines(ctx context.Context, patientID uuid.UUID) ([]model.Medicine, error) {
	return s.medicines.FindByPatient(ctx, patientID)
}

func (s *clinicalService) AddDiagnosis(ctx context.Context, doctorID, patientID uuid.UUID, input dto.AddDiagnosisRequest) (*model.Diagnosis, error) {
	if _, err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}

	diagnosis := &model.Diagnosis{
		DoctorID:      doctorID,
		PatientID:     patientID,
		DiagnosisText: s.sanitizer.Sanitize(input.DiagnosisText),
	}

	if err := s.diagnoses.Create(ctx, diagnosis); err != nil {
		return nil, err
	}

	return diagnosis, nil
}

func (s *clinicalService) ListDiagnoses(ctx context.Context, patientID uuid.UUID) ([]model.Diagnosis, error) {
	return s.diagnoses.FindByPatient(ctx, patientID)
}

func (s *clinicalService) PatientHistory(ctx context.Context, patientID uuid.UUID) (*dto.PatientHistoryResponse, error) {
	patient, err := s.requirePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	medicines, err := s.medicines.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	diagnoses, err := s.diagnoses.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return &dto.PatientHistoryResponse{
		PatientUsername: patient.Username,
		Medicines:       medicines,
		Diagnoses:       diagnoses,
	}, nil
}

func (s *clinicalService) requirePatient(ctx context.Context, patientID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, patientID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("patient not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if user.Role.Name != model.RolePatient {
		return nil, fmt.Errorf("user %s is not a patient: %w", user.Username, apperror.ErrBadRequest)
	}
	return user, nil
}
