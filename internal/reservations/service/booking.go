package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "reservio/internal/reservations/errors"
	"reservio/internal/reservations/events"
	"reservio/internal/reservations/repository"
	"reservio/internal/reservations/validator"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/interval"
	"reservio/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.BookingValidator
	checker   *ConflictChecker
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	bookingValidator *validator.BookingValidator,
	checker *ConflictChecker,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: bookingValidator,
		checker:   checker,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	// The advisory lock serializes writers on the resource; the conflict check
	// then runs race-free inside the transaction.
	lockID, err := s.acquireResourceLock(ctx, booking.ResourceID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseResourceLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release resource lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checker.CheckAvailable(txCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "resource_id", booking.ResourceID, "error", err)
		return err
	}

	s.publisher.BookingCreated(booking)
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to check booking existence", err)
	}

	if updates.IsEmpty() {
		return nil, apperrors.InvalidInput("Update contains no recognized fields")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := updates.Merge(existing)
	merged.ID = id
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	// Re-checking is needed when the window or resource moves, and also when a
	// cancelled booking comes back to life: its slot may have been re-booked
	// while it was cancelled.
	needsCheck := updates.TouchesSchedule() ||
		(updates.Status != nil && existing.Status == model.StatusCancelled && *updates.Status != model.StatusCancelled)

	if needsCheck {
		lockID, err := s.acquireResourceLock(ctx, merged.ResourceID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if releaseErr := s.releaseResourceLock(ctx, lockID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release resource lock", "lock_id", lockID, "error", releaseErr)
			}
		}()
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if needsCheck {
			if err := s.checker.CheckAvailable(txCtx, merged, id); err != nil {
				return err
			}
		}
		if err := s.repo.Update(txCtx, id, merged); err != nil {
			if errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, err
	}

	s.publisher.BookingUpdated(merged)
	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return merged, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var deleted *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(err, reserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}

		if err := s.repo.Delete(txCtx, id); err != nil {
			if errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to delete booking", err)
		}

		deleted = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.BookingDeleted(deleted)
	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusPending
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := interval.New(booking.StartTime, booking.EndTime); err != nil {
		return apperrors.InvalidInput("end_time must be after start_time")
	}

	return nil
}

// acquireResourceLock takes the advisory lock for a resource. A duplicate-key
// error means another writer holds it, which surfaces as a conflict rather
// than blocking.
func (s *bookingService) acquireResourceLock(ctx context.Context, resourceID string) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s", resourceID)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.LockTTL),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) || errors.Is(err, reserrors.ErrLockHeld) {
			return "", apperrors.Conflict("This resource is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire resource lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseResourceLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
