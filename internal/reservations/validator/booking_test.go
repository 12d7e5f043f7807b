package validator

import (
	"strings"
	"testing"
	"time"

	"reservio/pkg/logger"
	"reservio/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &model.Booking{
		ResourceID: "room-1",
		UserID:     "user-1",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     model.StatusPending,
	}
}

func TestValidate_ValidBooking(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validBooking()); err != nil {
		t.Fatalf("expected valid booking, got %v", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(*model.Booking)
		field  string
	}{
		{"missing resource_id", func(b *model.Booking) { b.ResourceID = "" }, "ResourceID"},
		{"missing user_id", func(b *model.Booking) { b.UserID = "" }, "UserID"},
		{"missing start_time", func(b *model.Booking) { b.StartTime = time.Time{} }, "StartTime"},
		{"missing end_time", func(b *model.Booking) { b.EndTime = time.Time{} }, "EndTime"},
		{"missing status", func(b *model.Booking) { b.Status = "" }, "Status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := validBooking()
			tt.mutate(booking)

			err := v.Validate(booking)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_InvalidStatus(t *testing.T) {
	v := newTestValidator()

	booking := validBooking()
	booking.Status = "archived"

	err := v.Validate(booking)
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	if !strings.Contains(err.Error(), "Status") {
		t.Errorf("expected error to mention Status, got: %v", err)
	}
}

func TestValidate_InvalidObjectID(t *testing.T) {
	v := newTestValidator()

	booking := validBooking()
	booking.ID = "not-an-object-id"

	err := v.Validate(booking)
	if err == nil {
		t.Fatal("expected validation error for malformed ID")
	}
	if !strings.Contains(err.Error(), "ObjectID") {
		t.Errorf("expected ObjectID message, got: %v", err)
	}
}

func TestValidateUpdate_EmptyPatchIsValid(t *testing.T) {
	v := newTestValidator()

	// Field-level validation passes; the service rejects empty patches.
	if err := v.ValidateUpdate(&model.BookingUpdate{}); err != nil {
		t.Fatalf("expected empty patch to pass field validation, got %v", err)
	}
}

func TestValidateUpdate_InvalidStatus(t *testing.T) {
	v := newTestValidator()

	bad := "archived"
	err := v.ValidateUpdate(&model.BookingUpdate{Status: &bad})
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestValidateUpdate_TooLongResourceID(t *testing.T) {
	v := newTestValidator()

	long := strings.Repeat("x", 129)
	err := v.ValidateUpdate(&model.BookingUpdate{ResourceID: &long})
	if err == nil {
		t.Fatal("expected validation error for oversized resource_id")
	}
}
