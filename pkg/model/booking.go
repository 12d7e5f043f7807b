package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking reserves a resource for the half-open interval
// [StartTime, EndTime). Non-cancelled bookings for the same resource must
// never overlap; cancelled bookings are exempt from that invariant.
type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID string    `json:"resource_id" bson:"resource_id" validate:"required,min=1,max=128"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required,min=1,max=128"`
	StartTime  time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" bson:"end_time" validate:"required"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingUpdate is a partial patch. Absent fields stay nil and leave the
// stored value untouched.
type BookingUpdate struct {
	ResourceID *string    `json:"resource_id,omitempty" validate:"omitempty,min=1,max=128"`
	UserID     *string    `json:"user_id,omitempty" validate:"omitempty,min=1,max=128"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Status     *string    `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// IsEmpty reports whether the patch carries no recognized field.
func (u *BookingUpdate) IsEmpty() bool {
	return u.ResourceID == nil &&
		u.UserID == nil &&
		u.StartTime == nil &&
		u.EndTime == nil &&
		u.Status == nil
}

// TouchesSchedule reports whether the patch changes anything the overlap
// invariant depends on.
func (u *BookingUpdate) TouchesSchedule() bool {
	return u.ResourceID != nil || u.StartTime != nil || u.EndTime != nil
}

// Merge overlays the patch onto the existing record and returns the complete
// prospective booking. The original is never mutated.
func (u *BookingUpdate) Merge(existing *Booking) *Booking {
	merged := *existing

	if u.ResourceID != nil {
		merged.ResourceID = *u.ResourceID
	}
	if u.UserID != nil {
		merged.UserID = *u.UserID
	}
	if u.StartTime != nil {
		merged.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		merged.EndTime = *u.EndTime
	}
	if u.Status != nil {
		merged.Status = *u.Status
	}

	return &merged
}
