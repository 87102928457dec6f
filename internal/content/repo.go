// Package content manages the site's content collections: sermons, events,
// leaders, cell groups, zones and media.
package content

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wmatuze/vbc-web-sub001/internal/format"
)

// ErrNotFound is returned when no document matches an id.
var ErrNotFound = errors.New("not found")

// ErrBadID is returned for ids that are not valid object ids.
var ErrBadID = errors.New("invalid id")

// Entity describes one content collection and how it is exposed.
type Entity struct {
	Name       string // route segment
	Collection string
	Type       string // entity tag stamped on new documents
}

// Entities lists every content collection the API serves.
var Entities = []Entity{
	{Name: "sermons", Collection: "sermons", Type: format.TypeSermon},
	{Name: "events", Collection: "events", Type: format.TypeEvent},
	{Name: "leaders", Collection: "leaders", Type: format.TypeLeader},
	{Name: "cell-groups", Collection: "cellgroups", Type: format.TypeCellGroup},
	{Name: "zones", Collection: "zones", Type: format.TypeZone},
	{Name: "media", Collection: "media", Type: format.TypeMedia},
}

// EntityByName looks up an entity by its route segment.
func EntityByName(name string) (Entity, bool) {
	for _, e := range Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Repository persists content documents in MongoDB. Documents are handled as
// loose bson.M maps; the format package shapes them on the way out.
type Repository struct {
	db *mongo.Database
}

// NewRepository creates a repo over the application database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrBadID
	}
	return oid, nil
}

// List returns every document in a collection, newest first.
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

// Get returns one document by id.
func (r *Repository) Get(ctx context.Context, collection, id string) (bson.M, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
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

// Insert writes a new document, stamping id and creation time.
func (r *Repository) Insert(ctx context.Context, collection string, doc bson.M) (bson.M, error) {
	if doc == nil {
		doc = bson.M{}
	}
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

// Update applies a partial update and returns the updated document.
func (r *Repository) Update(ctx context.Context, collection, id string, set bson.M) (bson.M, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err = r.db.Collection(collection).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document by id.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
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
