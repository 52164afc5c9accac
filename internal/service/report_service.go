package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/pkg/apperror"
	"github.com/medtrackhq/medtrack/pkg/pdf"
	"github.com/medtrackhq/medtrack/pkg/storage"
	"gorm.io/gorm"
)

// allowedExtensions is the upload allow-list. Anything else is rejected
// before the file touches storage.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type ReportService interface {
	Upload(ctx context.Context, patientID uuid.UUID, file *multipart.FileHeader) (*model.Report, error)
	ListForPatient(ctx context.Context, doctorID, patientID uuid.UUID) (*dto.ReportListResponse, error)
	HistoryPDF(ctx context.Context, patientID uuid.UUID) (string, []byte, error)
}

type reportService struct {
	reports      repository.ReportRepository
	appointments repository.AppointmentRepository
	clinical     ClinicalService
	fileStorage  storage.FileStorage
}

func NewReportService(reports repository.ReportRepository, appointments repository.AppointmentRepository, clinical ClinicalService, fileStorage storage.FileStorage) ReportService {
	return &reportService{
		reports:      reports,
		appointments: appointments,
		clinical:     clinical,
		fileStorage:  fileStorage,
	}
}

func (s *reportService) Upload(ctx context.Context, patientID uuid.UUID, file *multipart.FileHeader) (*model.Report, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("file type %q is not allowed (pdf, png, jpg, jpeg only): %w", ext, apperror.ErrInvalidInput)
	}

	name := storage.SanitizeFilename(file.Filename)
	if name == "" {
		return nil, fmt.Errorf("invalid file name: %w", apperror.ErrInvalidInput)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	location, err := s.fileStorage.Save(ctx, f, "reports", name)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		PatientID:   patientID,
		Filename:    name,
		FileURL:     location,
		ContentType: file.Header.Get("Content-Type"),
	}

	if err := s.reports.Create(ctx, report); err != nil {
		// Keep storage consistent with the table; an orphan file helps no one.
		_ = s.fileStorage.Delete(ctx, location)
		return nil, err
	}

	return report, nil
}

func (s *reportService) ListForPatient(ctx context.Context, doctorID, patientID uuid.UUID) (*dto.ReportListResponse, error) {
	reports, err := s.reports.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReportListResponse{Reports: reports}

	latest, err := s.appointments.FindLatestForDoctorPatient(ctx, doctorID, patientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if latest != nil {
		resp.LatestAppointmentID = &latest.ID
	}

	return resp, nil
}

func (s *reportService) HistoryPDF(ctx context.Context, patientID uuid.UUID) (string, []byte, error) {
	history, err := s.clinical.PatientHistory(ctx, patientID)
	if err != nil {
		return "", nil, err
	}

	report := pdf.PatientReport{
		PatientUsername: history.PatientUsername,
		GeneratedAt:     time.Now(),
	}
	for _, med := range history.Medicines {
		report.Medicines = append(report.Medicines, pdf.MedicineLine{
			Name:   med.Name,
			Dosage: med.Dosage,
			Time:   med.Time,
		})
	}
	for _, diag := range history.Diagnoses {
		doctor := ""
		if diag.Doctor != nil {
			doctor = diag.Doctor.Username
		}
		report.Diagnoses = append(report.Diagnoses, pdf.DiagnosisLine{
			Doctor: doctor,
			Text:   diag.DiagnosisText,
		})
	}

	rendered, err := pdf.Render(report)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s_report.pdf", history.PatientUsername)
	return filename, rendered, nil
}
