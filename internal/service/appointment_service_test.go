package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/pkg/apperror"
	"gorm.io/gorm"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment

	// captured by Complete
	completedDiagnosis    *model.Diagnosis
	completedEmail        *model.EmailOutbox
	completedNotification *model.Notification
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	for _, existing := range r.appointments {
		if existing.DoctorID == appointment.DoctorID &&
			existing.Date == appointment.Date &&
			existing.Time == appointment.Time {
			return gorm.ErrDuplicatedKey
		}
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *appointment
	return &found, nil
}

func (r *fakeAppointmentRepo) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0)
	for _, appointment := range r.appointments {
		if appointment.PatientID == patientID {
			appointments = append(appointments, *appointment)
		}
	}
	return appointments, nil
}

func (r *fakeAppointmentRepo) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0)
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID {
			appointments = append(appointments, *appointment)
		}
	}
	return appointments, nil
}

func (r *fakeAppointmentRepo) FindByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0)
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID && appointment.Status == status {
			appointments = append(appointments, *appointment)
		}
	}
	return appointments, nil
}

func (r *fakeAppointmentRepo) FindLatestForDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Appointment, error) {
	var latest *model.Appointment
	for _, appointment := range r.appointments {
		if appointment.DoctorID != doctorID || appointment.PatientID != patientID {
			continue
		}
		if latest == nil || appointment.CreatedAt.After(latest.CreatedAt) {
			latest = appointment
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	found := *latest
	return &found, nil
}

func (r *fakeAppointmentRepo) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	var count int64
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) CountByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status model.AppointmentStatus) (int64, error) {
	var count int64
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID && appointment.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) SlotTaken(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error) {
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID && appointment.Date == date && appointment.Time == timeOfDay {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, appointment *model.Appointment) error {
	stored, ok := r.appointments[appointment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = appointment.Status
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) Complete(ctx context.Context, appointment *model.Appointment, diagnosis *model.Diagnosis, email *model.EmailOutbox, notification *model.Notification) error {
	if err := r.UpdateStatus(ctx, appointment); err != nil {
		return err
	}
	r.completedDiagnosis = diagnosis
	r.completedEmail = email
	r.completedNotification = notification
	return nil
}

type fakeNotificationService struct {
	published []*model.Notification
}

func (s *fakeNotificationService) CreateNotification(ctx context.Context, notification *model.Notification) error {
	return nil
}

func (s *fakeNotificationService) Publish(ctx context.Context, notification *model.Notification) {
	s.published = append(s.published, notification)
}

func (s *fakeNotificationService) GetNotifications(userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}

func (s *fakeNotificationService) MarkAsRead(id uuid.UUID) error { return nil }

func (s *fakeNotificationService) MarkAllAsRead(userID uuid.UUID) error { return nil }

func (s *fakeNotificationService) UnreadCount(userID uuid.UUID) (int64, error) { return 0, nil }

func seedDoctor(t *testing.T, users *fakeUserRepo, username string) *model.User {
	t.Helper()
	roleID := users.roles[model.RoleDoctor].ID
	doctor := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		RoleID:       &roleID,
	}
	if err := users.Create(context.Background(), doctor); err != nil {
		t.Fatalf("seeding doctor: %v", err)
	}
	return doctor
}

func TestBookCreatesUpcomingAppointment(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	doctor := seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	patientID := uuid.New()
	appointment, err := svc.Book(context.Background(), patientID, dto.BookAppointmentRequest{
		DoctorUsername: "drhouse",
		Date:           "2026-09-15",
		Time:           "10:30",
		Reason:         "persistent headache",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appointment.Status != model.StatusUpcoming {
		t.Errorf("expected status %s, got %s", model.StatusUpcoming, appointment.Status)
	}
	if appointment.DoctorID != doctor.ID {
		t.Error("appointment bound to the wrong doctor")
	}
	if len(appointments.appointments) != 1 {
		t.Errorf("expected 1 stored appointment, got %d", len(appointments.appointments))
	}
}

func TestBookSanitizesReason(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	appointment, err := svc.Book(context.Background(), uuid.New(), dto.BookAppointmentRequest{
		DoctorUsername: "drhouse",
		Date:           "2026-09-15",
		Time:           "10:30",
		Reason:         `<script>alert(1)</script>checkup`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(appointment.Reason, "<script>") {
		t.Errorf("reason was not sanitized: %q", appointment.Reason)
	}
	if !strings.Contains(appointment.Reason, "checkup") {
		t.Errorf("sanitizer dropped legitimate text: %q", appointment.Reason)
	}
}

func TestBookRejectsTakenSlot(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	input := dto.BookAppointmentRequest{
		DoctorUsername: "drhouse",
		Date:           "2026-09-15",
		Time:           "10:30",
	}

	if _, err := svc.Book(context.Background(), uuid.New(), input); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := svc.Book(context.Background(), uuid.New(), input)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(appointments.appointments) != 1 {
		t.Errorf("conflicting booking created a row: %d appointments", len(appointments.appointments))
	}
}

func TestBookRejectsNonDoctorTarget(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	svc := NewAppointmentService(appointments, users, nil, nil)

	roleID := users.roles[model.RolePatient].ID
	if err := users.Create(context.Background(), &model.User{
		Username: "jdoe", Email: "jdoe@example.com", PasswordHash: "x", RoleID: &roleID,
	}); err != nil {
		t.Fatalf("seeding patient: %v", err)
	}

	_, err := svc.Book(context.Background(), uuid.New(), dto.BookAppointmentRequest{
		DoctorUsername: "jdoe",
		Date:           "2026-09-15",
		Time:           "10:30",
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestCancelOnlyByOwner(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	ownerID := uuid.New()
	appointment, err := svc.Book(context.Background(), ownerID, dto.BookAppointmentRequest{
		DoctorUsername: "drhouse",
		Date:           "2026-09-15",
		Time:           "10:30",
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if err := svc.Cancel(context.Background(), uuid.New(), appointment.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if len(appointments.appointments) != 1 {
		t.Fatal("non-owner cancel removed the appointment")
	}

	if err := svc.Cancel(context.Background(), ownerID, appointment.ID); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if len(appointments.appointments) != 0 {
		t.Error("owner cancel did not remove the appointment")
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	doctor := seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	pending := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  doctor.ID,
		Date:      "2026-09-15",
		Time:      "10:30",
		Status:    model.StatusPending,
	}
	if err := appointments.Create(context.Background(), pending); err != nil {
		t.Fatalf("seeding appointment: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), pending.ID, model.StatusAccepted); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for another doctor, got %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), doctor.ID, pending.ID, model.StatusCompleted); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict for Pending->Completed, got %v", err)
	}
	if appointments.appointments[pending.ID].Status != model.StatusPending {
		t.Fatal("rejected transition mutated stored status")
	}

	updated, err := svc.UpdateStatus(context.Background(), doctor.ID, pending.ID, model.StatusAccepted)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if updated.Status != model.StatusAccepted {
		t.Errorf("expected Accepted, got %s", updated.Status)
	}
	if appointments.appointments[pending.ID].Status != model.StatusAccepted {
		t.Error("accept was not persisted")
	}
}

func TestSolveWritesDiagnosisEmailAndNotification(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	notifications := &fakeNotificationService{}
	doctor := seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, notifications, nil)

	patient := &model.User{Username: "jdoe", Email: "jdoe@example.com", PasswordHash: "x"}
	patient.ID = uuid.New()

	upcoming := &model.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-15",
		Time:      "10:30",
		Reason:    "persistent headache",
		Status:    model.StatusUpcoming,
	}
	if err := appointments.Create(context.Background(), upcoming); err != nil {
		t.Fatalf("seeding appointment: %v", err)
	}
	appointments.appointments[upcoming.ID].Patient = patient
	appointments.appointments[upcoming.ID].Doctor = doctor

	solved, err := svc.Solve(context.Background(), doctor.ID, upcoming.ID, dto.SolveAppointmentRequest{
		Diagnosis: "tension headache, rest and hydration",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if solved.Status != model.StatusCompleted {
		t.Errorf("expected Completed, got %s", solved.Status)
	}

	diagnosis := appointments.completedDiagnosis
	if diagnosis == nil {
		t.Fatal("no diagnosis written")
	}
	if diagnosis.PatientID != patient.ID || diagnosis.DoctorID != doctor.ID {
		t.Error("diagnosis bound to wrong users")
	}
	if diagnosis.AppointmentID == nil || *diagnosis.AppointmentID != upcoming.ID {
		t.Error("diagnosis not linked to the appointment")
	}

	email := appointments.completedEmail
	if email == nil {
		t.Fatal("no outbox email queued")
	}
	if email.Recipient != patient.Email {
		t.Errorf("email addressed to %s, want %s", email.Recipient, patient.Email)
	}
	if want := "Diagnosis from Dr. drhouse"; email.Subject != want {
		t.Errorf("email subject %q, want %q", email.Subject, want)
	}
	if !strings.Contains(email.Body, "tension headache") {
		t.Error("email body is missing the diagnosis text")
	}

	if len(notifications.published) != 1 {
		t.Fatalf("expected 1 published notification, got %d", len(notifications.published))
	}
	if notifications.published[0].UserID != patient.ID {
		t.Error("notification published to the wrong user")
	}
}

func TestSolveRequiresUpcomingStatus(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	doctor := seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	pending := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  doctor.ID,
		Date:      "2026-09-15",
		Time:      "10:30",
		Status:    model.StatusPending,
	}
	if err := appointments.Create(context.Background(), pending); err != nil {
		t.Fatalf("seeding appointment: %v", err)
	}

	_, err := svc.Solve(context.Background(), doctor.ID, pending.ID, dto.SolveAppointmentRequest{Diagnosis: "n/a"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if appointments.completedDiagnosis != nil {
		t.Error("diagnosis written despite rejected transition")
	}
}

func TestSummaryCounts(t *testing.T) {
	users := newFakeUserRepo()
	appointments := newFakeAppointmentRepo()
	doctor := seedDoctor(t, users, "drhouse")
	svc := NewAppointmentService(appointments, users, nil, nil)

	statuses := []model.AppointmentStatus{
		model.StatusCompleted, model.StatusCompleted, model.StatusUpcoming, model.StatusPending,
	}
	for i, status := range statuses {
		appointment := &model.Appointment{
			PatientID: uuid.New(),
			DoctorID:  doctor.ID,
			Date:      "2026-09-15",
			Time:      "1" + string(rune('0'+i)) + ":00",
			Status:    status,
		}
		if err := appointments.Create(context.Background(), appointment); err != nil {
			t.Fatalf("seeding appointment %d: %v", i, err)
		}
	}

	summary, err := svc.Summary(context.Background(), doctor.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 4 {
		t.Errorf("total = %d, want 4", summary.Total)
	}
	if summary.Completed != 2 {
		t.Errorf("completed = %d, want 2", summary.Completed)
	}
	if len(summary.Upcoming) != 1 {
		t.Errorf("upcoming = %d entries, want 1", len(summary.Upcoming))
	}
}
