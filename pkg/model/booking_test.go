package model

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestBookingUpdate_IsEmpty(t *testing.T) {
	empty := &BookingUpdate{}
	if !empty.IsEmpty() {
		t.Error("expected empty patch to report IsEmpty")
	}

	status := StatusConfirmed
	patch := &BookingUpdate{Status: &status}
	if patch.IsEmpty() {
		t.Error("expected patch with status to not be empty")
	}
}

func TestBookingUpdate_TouchesSchedule(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		patch *BookingUpdate
		want  bool
	}{
		{"status only", &BookingUpdate{Status: strPtr(StatusCancelled)}, false},
		{"user only", &BookingUpdate{UserID: strPtr("u2")}, false},
		{"resource change", &BookingUpdate{ResourceID: strPtr("r2")}, true},
		{"start change", &BookingUpdate{StartTime: &now}, true},
		{"end change", &BookingUpdate{EndTime: &now}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.TouchesSchedule(); got != tt.want {
				t.Errorf("TouchesSchedule() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingUpdate_Merge(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	existing := &Booking{
		ID:         "b1",
		ResourceID: "r1",
		UserID:     "u1",
		StartTime:  start,
		EndTime:    end,
		Status:     StatusPending,
	}

	newEnd := end.Add(30 * time.Minute)
	patch := &BookingUpdate{
		EndTime: &newEnd,
		Status:  strPtr(StatusConfirmed),
	}

	merged := patch.Merge(existing)

	if merged.EndTime != newEnd {
		t.Errorf("expected merged end %v, got %v", newEnd, merged.EndTime)
	}
	if merged.Status != StatusConfirmed {
		t.Errorf("expected merged status confirmed, got %s", merged.Status)
	}
	if merged.ResourceID != "r1" || merged.UserID != "u1" || merged.StartTime != start {
		t.Error("expected untouched fields to carry over from the existing record")
	}
	if existing.EndTime != end || existing.Status != StatusPending {
		t.Error("expected the existing record to stay unmodified")
	}
}
