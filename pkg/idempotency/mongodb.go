package idempotency

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "idempotency_keys"

// MongoRepository stores records in MongoDB; a TTL index drops expired ones
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a MongoRepository
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(collectionName)}
}

// Acquire inserts rec unless the user already holds the key
func (r *MongoRepository) Acquire(ctx context.Context, rec *Record) (*Record, bool, error) {
	filter := bson.M{"userId": rec.UserID, "key": rec.Key}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored Record
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": rec}, opts).Decode(&stored)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire idempotency key: %w", err)
	}
	return &stored, stored.ID == rec.ID, nil
}

// Complete stores the answer
func (r *MongoRepository) Complete(ctx context.Context, id string, resp Response) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"statusCode":  resp.StatusCode,
		"contentType": resp.ContentType,
		"body":        resp.Body,
		"completedAt": resp.CompletedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release forgets an unfinished record so the key can be retried
func (r *MongoRepository) Release(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "completedAt": nil}); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique key index and the TTL index
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create idempotency indexes: %w", err)
	}
	return nil
}
