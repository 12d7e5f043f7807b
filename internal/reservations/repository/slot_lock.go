package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"reservio/pkg/config"
	"reservio/pkg/model"
)

const (
	LockCollectionName = "Booking_locks"
)

// SlotLockRepository is an advisory lock over a resource. Create relies on the
// unique _id index: a second writer inserting the same lock ID gets a
// duplicate-key error, which callers translate into a conflict. Expired locks
// are reaped by the TTL index on expires_at.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) error
	Delete(ctx context.Context, id string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Create returns the raw driver error so callers can distinguish duplicate-key
// contention from infrastructure failures.
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", id, err)
	}
	return nil
}
