// Package seed populates a fresh database with the zones, cell groups and
// admin account a new deployment starts from.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wmatuze/vbc-web-sub001/internal/auth"
	"github.com/wmatuze/vbc-web-sub001/internal/format"
)

type zoneSeed struct {
	Name       string
	ZoneLeader string
}

type cellGroupSeed struct {
	Name       string
	Zone       string // zone name, resolved to an id during seeding
	Leader     string
	MeetingDay string
	Location   string
}

var zones = []zoneSeed{
	{Name: "Kabwata Zone", ZoneLeader: "Elder Mulenga"},
	{Name: "Chilenje Zone", ZoneLeader: "Elder Banda"},
	{Name: "Woodlands Zone", ZoneLeader: "Elder Phiri"},
}

var cellGroups = []cellGroupSeed{
	{Name: "Kabwata Central", Zone: "Kabwata Zone", Leader: "Bro. Mwape", MeetingDay: "Wednesday", Location: "Kabwata Community Hall"},
	{Name: "Kabwata East", Zone: "Kabwata Zone", Leader: "Sis. Tembo", MeetingDay: "Thursday", Location: "Stand 214"},
	{Name: "Chilenje South", Zone: "Chilenje Zone", Leader: "Bro. Zimba", MeetingDay: "Tuesday", Location: "Chilenje Basic School"},
	{Name: "Woodlands Fellowship", Zone: "Woodlands Zone", Leader: "Sis. Daka", MeetingDay: "Friday", Location: "Plot 7, Woodlands"},
}

// Run seeds an empty database. It is idempotent: collections that already
// have documents are left alone.
func Run(ctx context.Context, db *mongo.Database, adminEmail, adminPassword string) error {
	zoneIDs, err := seedZones(ctx, db)
	if err != nil {
		return fmt.Errorf("seed zones: %w", err)
	}
	if err := seedCellGroups(ctx, db, zoneIDs); err != nil {
		return fmt.Errorf("seed cell groups: %w", err)
	}
	if err := seedAdmin(ctx, db, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// seedZones inserts the zone documents and returns the name-to-id map the
// cell group pass needs. The map is threaded explicitly rather than held in
// shared state so callers can seed collections independently.
func seedZones(ctx context.Context, db *mongo.Database) (map[string]primitive.ObjectID, error) {
	coll := db.Collection("zones")
	ids := make(map[string]primitive.ObjectID, len(zones))

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		// Already seeded; recover the map for the cell group pass.
		cur, err := coll.Find(ctx, bson.M{})
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)
		var docs []bson.M
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		for _, doc := range docs {
			name, _ := doc["name"].(string)
			if oid, ok := doc["_id"].(primitive.ObjectID); ok && name != "" {
				ids[name] = oid
			}
		}
		return ids, nil
	}

	for _, z := range zones {
		oid := primitive.NewObjectID()
		doc := bson.M{
			"_id":        oid,
			"type":       format.TypeZone,
			"name":       z.Name,
			"zoneLeader": z.ZoneLeader,
			"createdAt":  time.Now().UTC(),
		}
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return nil, err
		}
		ids[z.Name] = oid
	}
	log.Printf("seeded %d zones", len(zones))
	return ids, nil
}

func seedCellGroups(ctx context.Context, db *mongo.Database, zoneIDs map[string]primitive.ObjectID) error {
	coll := db.Collection("cellgroups")

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, cg := range cellGroups {
		zoneID, ok := zoneIDs[cg.Zone]
		if !ok {
			return fmt.Errorf("cell group %q references unknown zone %q", cg.Name, cg.Zone)
		}
		doc := bson.M{
			"_id":        primitive.NewObjectID(),
			"type":       format.TypeCellGroup,
			"name":       cg.Name,
			"zone":       zoneID,
			"leader":     cg.Leader,
			"meetingDay": cg.MeetingDay,
			"location":   cg.Location,
			"createdAt":  time.Now().UTC(),
		}
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return err
		}
	}
	log.Printf("seeded %d cell groups", len(cellGroups))
	return nil
}

func seedAdmin(ctx context.Context, db *mongo.Database, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	coll := db.Collection("admins")

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, bson.M{
		"_id":          primitive.NewObjectID(),
		"email":        email,
		"passwordHash": hash,
		"role":         auth.RoleAdmin,
		"createdAt":    time.Now().UTC(),
	})
	if err == nil {
		log.Printf("seeded admin account %s", email)
	}
	return err
}
