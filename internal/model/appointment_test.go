package model

import "testing"

func TestStatusValid(t *testing.T) {
	valid := []AppointmentStatus{StatusPending, StatusAccepted, StatusRejected, StatusUpcoming, StatusCompleted}
	for _, status := range valid {
		if !status.Valid() {
			t.Errorf("expected %s to be valid", status)
		}
	}

	if AppointmentStatus("Cancelled").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusUpcoming, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusRejected, false},
		{StatusCompleted, StatusUpcoming, false},
		{StatusRejected, StatusAccepted, false},
		{StatusUpcoming, StatusAccepted, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTransitionMutatesOnlyOnSuccess(t *testing.T) {
	appt := &Appointment{Status: StatusPending}

	if err := appt.Transition(StatusCompleted); err == nil {
		t.Fatal("expected error for Pending -> Completed")
	}
	if appt.Status != StatusPending {
		t.Errorf("status changed on failed transition: %s", appt.Status)
	}

	if err := appt.Transition(StatusAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != StatusAccepted {
		t.Errorf("expected Accepted, got %s", appt.Status)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	appt := &Appointment{Status: StatusPending}
	if err := appt.Transition(AppointmentStatus("NoShow")); err == nil {
		t.Fatal("expected error for unknown target status")
	}
}
