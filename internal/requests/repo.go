// Package requests manages member-submitted records that move through a
// status workflow: membership renewals, foundation class registrations and
// event signups.
package requests

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no record matches an id.
var ErrNotFound = errors.New("not found")

// ErrBadID is returned for ids that are not valid object ids.
var ErrBadID = errors.New("invalid id")

// Repository persists request records in MongoDB.
type Repository struct {
	db *mongo.Database
}

// NewRepository creates a repo over the application database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record.
func (r *Repository) Insert(ctx context.Context, collection string, doc bson.M) (bson.M, error) {
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = time.Now().UTC()
	}
	if _, err := r.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns all records, newest first.
func (r *Repository) List(ctx context.Context, collection string) ([]bson.M, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns one record by id.
func (r *Repository) Get(ctx context.Context, collection, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBadID
	}
	var doc bson.M
	err = r.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateStatus sets the status field and returns the updated record.
// Concurrent updates are last-write-wins; there is no workflow lock.
func (r *Repository) UpdateStatus(ctx context.Context, collection, id, status string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBadID
	}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err = r.db.Collection(collection).FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a record by id. There is no soft delete.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBadID
	}
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
