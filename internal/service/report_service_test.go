package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/pkg/apperror"
	"gorm.io/gorm"
)

type fakeReportRepo struct {
	reports   []model.Report
	createErr error
}

func (r *fakeReportRepo) Create(ctx context.Context, report *model.Report) error {
	if r.createErr != nil {
		return r.createErr
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	r.reports = append(r.reports, *report)
	return nil
}

func (r *fakeReportRepo) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Report, error) {
	reports := make([]model.Report, 0)
	for _, report := range r.reports {
		if report.PatientID == patientID {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

func (r *fakeReportRepo) FindByFilename(ctx context.Context, filename string) (*model.Report, error) {
	for _, report := range r.reports {
		if report.Filename == filename {
			found := report
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeStorage struct {
	saved   map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	location := folder + "/" + fileName
	s.saved[location] = data
	return location, nil
}

func (s *fakeStorage) Delete(ctx context.Context, location string) error {
	delete(s.saved, location)
	s.deleted = append(s.deleted, location)
	return nil
}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("report", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("parsing form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["report"][0]
}

func TestUploadStoresAllowedFile(t *testing.T) {
	reports := &fakeReportRepo{}
	store := newFakeStorage()
	svc := NewReportService(reports, newFakeAppointmentRepo(), nil, store)

	patientID := uuid.New()
	report, err := svc.Upload(context.Background(), patientID, makeFileHeader(t, "blood test.pdf", []byte("%PDF-1.4 data")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Filename != "blood_test.pdf" {
		t.Errorf("filename = %q, want blood_test.pdf", report.Filename)
	}
	if report.PatientID != patientID {
		t.Error("report bound to wrong patient")
	}
	if _, ok := store.saved[report.FileURL]; !ok {
		t.Errorf("file not saved at %q", report.FileURL)
	}
	if len(reports.reports) != 1 {
		t.Errorf("expected 1 report row, got %d", len(reports.reports))
	}
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	for _, filename := range []string{"report.exe", "report.pdf.sh", "report", "report.docx"} {
		reports := &fakeReportRepo{}
		store := newFakeStorage()
		svc := NewReportService(reports, newFakeAppointmentRepo(), nil, store)

		_, err := svc.Upload(context.Background(), uuid.New(), makeFileHeader(t, filename, []byte("data")))
		if !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("Upload(%q) expected invalid input, got %v", filename, err)
		}
		if len(store.saved) != 0 {
			t.Errorf("Upload(%q) wrote to storage despite rejection", filename)
		}
		if len(reports.reports) != 0 {
			t.Errorf("Upload(%q) created a row despite rejection", filename)
		}
	}
}

func TestUploadCleansUpStorageOnDBFailure(t *testing.T) {
	reports := &fakeReportRepo{createErr: errors.New("insert failed")}
	store := newFakeStorage()
	svc := NewReportService(reports, newFakeAppointmentRepo(), nil, store)

	_, err := svc.Upload(context.Background(), uuid.New(), makeFileHeader(t, "scan.png", []byte("pngdata")))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.saved) != 0 {
		t.Error("orphan file left in storage after failed insert")
	}
	if len(store.deleted) != 1 {
		t.Errorf("expected 1 cleanup delete, got %d", len(store.deleted))
	}
}

func TestListForPatientIncludesLatestAppointment(t *testing.T) {
	reports := &fakeReportRepo{}
	appointments := newFakeAppointmentRepo()
	svc := NewReportService(reports, appointments, nil, newFakeStorage())

	doctorID := uuid.New()
	patientID := uuid.New()

	resp, err := svc.ListForPatient(context.Background(), doctorID, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LatestAppointmentID != nil {
		t.Error("expected no latest appointment for fresh pair")
	}
	if resp.Reports == nil {
		t.Error("reports should be an empty slice, not nil")
	}

	appointment := &model.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      "2026-09-15",
		Time:      "10:30",
		Status:    model.StatusUpcoming,
	}
	if err := appointments.Create(context.Background(), appointment); err != nil {
		t.Fatalf("seeding appointment: %v", err)
	}

	resp, err = svc.ListForPatient(context.Background(), doctorID, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LatestAppointmentID == nil || *resp.LatestAppointmentID != appointment.ID {
		t.Error("latest appointment not surfaced")
	}
}

func TestHistoryPDF(t *testing.T) {
	users := newFakeUserRepo()
	patient := seedPatient(t, users, "jdoe")
	clinical := NewClinicalService(&fakeMedicineRepo{}, &fakeDiagnosisRepo{}, users)
	svc := NewReportService(&fakeReportRepo{}, newFakeAppointmentRepo(), clinical, newFakeStorage())

	filename, rendered, err := svc.HistoryPDF(context.Background(), patient.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "jdoe_report.pdf" {
		t.Errorf("filename = %q, want jdoe_report.pdf", filename)
	}
	if !strings.HasPrefix(string(rendered), "%PDF") {
		t.Error("rendered output is not a PDF document")
	}
}
