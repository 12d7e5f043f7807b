package model

import "time"

// SlotLock is an advisory lock serializing mutations per resource. The unique
// _id makes a concurrent insert fail with a duplicate-key error, which is the
// store-level rejection behind the in-service conflict check.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
