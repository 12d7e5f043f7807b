package service

import (
	"context"

	"reservio/internal/reservations/repository"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/interval"
	"reservio/pkg/model"
)

// ConflictChecker decides whether a prospective booking may occupy its window.
// It must run inside the same transaction as the write that depends on it,
// otherwise a concurrent writer can slip between check and insert.
type ConflictChecker struct {
	repo      repository.BookingRepository
	scanLimit int
}

func NewConflictChecker(repo repository.BookingRepository, cfg *config.Config) *ConflictChecker {
	return &ConflictChecker{
		repo:      repo,
		scanLimit: cfg.ConflictScanLimit,
	}
}

// CheckAvailable returns nil when no non-cancelled booking on the same
// resource overlaps the candidate's window. excludeID exempts the record being
// updated so a booking never conflicts with itself.
func (c *ConflictChecker) CheckAvailable(ctx context.Context, candidate *model.Booking, excludeID string) error {
	window, err := interval.New(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return apperrors.InvalidInput("end_time must be after start_time")
	}

	existing, err := c.repo.FindOverlapping(ctx, candidate.ResourceID, window, excludeID, c.scanLimit)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	var conflictingIDs []string
	for _, b := range existing {
		other := interval.Interval{Start: b.StartTime, End: b.EndTime}
		if window.Overlaps(other) {
			conflictingIDs = append(conflictingIDs, b.ID)
		}
	}

	if len(conflictingIDs) > 0 {
		return apperrors.ConflictWithIDs(
			"Booking overlaps an existing booking for this resource",
			conflictingIDs,
		)
	}

	return nil
}
