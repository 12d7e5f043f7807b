package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reserrors "reservio/internal/reservations/errors"
	"reservio/pkg/config"
	mongotx "reservio/pkg/db/mongo"
	"reservio/pkg/interval"
	"reservio/pkg/model"
)

const (
	CollectionName = "Bookings"
)

// ListFilter narrows FindAll/Count. Zero values mean "no constraint".
type ListFilter struct {
	UserID     string
	ResourceID string
	Status     string
	FromTime   *time.Time // start_time >= FromTime
	ToTime     *time.Time // end_time <= ToTime
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, id string, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	FindOverlapping(ctx context.Context, resourceID string, window interval.Interval, excludeID string, limit int) ([]*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds a store call. Inside a transaction the session context is
// returned unchanged: wrapping it would break transaction semantics.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildListFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	// Full field-set write of the merged record; created_at stays immutable.
	update := bson.M{
		"$set": bson.M{
			"resource_id": booking.ResourceID,
			"user_id":     booking.UserID,
			"start_time":  booking.StartTime,
			"end_time":    booking.EndTime,
			"status":      booking.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

// FindOverlapping returns non-cancelled bookings on the resource whose
// half-open interval overlaps window, excluding excludeID when non-empty. The
// overlap predicate lives in the query: existing.start < window.end AND
// existing.end > window.start.
func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, resourceID string, window interval.Interval, excludeID string, limit int) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id": resourceID,
		"status":      bson.M{"$ne": model.StatusCancelled},
		"start_time":  bson.M{"$lt": window.End},
		"end_time":    bson.M{"$gt": window.Start},
	}

	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildListFilter(filter ListFilter) bson.M {
	query := bson.M{}

	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.ResourceID != "" {
		query["resource_id"] = filter.ResourceID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.FromTime != nil {
		query["start_time"] = bson.M{"$gte": *filter.FromTime}
	}
	if filter.ToTime != nil {
		query["end_time"] = bson.M{"$lte": *filter.ToTime}
	}

	return query
}
