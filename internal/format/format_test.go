package format

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocumentEventShape(t *testing.T) {
	doc := bson.M{
		"_id":       "507f191e810c19729de860ea",
		"title":     "Sunday Service",
		"startDate": "2024-06-02T09:00:00Z",
	}
	got := Document(doc)

	if got["id"] != "507f191e810c19729de860ea" {
		t.Errorf("id = %v", got["id"])
	}
	if got["type"] != TypeEvent {
		t.Errorf("type = %v", got["type"])
	}
	if got["date"] != "June 2, 2024" {
		t.Errorf("date = %v", got["date"])
	}
	if s, ok := got["time"].(string); !ok || s == "" {
		t.Errorf("time = %v", got["time"])
	}
	if got["imageUrl"] != "/assets/images/default-event.jpg" {
		t.Errorf("imageUrl = %v", got["imageUrl"])
	}
	if got["startDate"] != "June 2, 2024" {
		t.Errorf("startDate = %v", got["startDate"])
	}
}

func TestDocumentObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got := Document(bson.M{"_id": oid, "name": "Pastor Mwansa", "role": "Senior Pastor"})

	if got["id"] != oid.Hex() {
		t.Errorf("id = %v, want %s", got["id"], oid.Hex())
	}
	if got["_id"] != oid.Hex() {
		t.Errorf("_id = %v, want hex string", got["_id"])
	}
	if got["type"] != TypeLeader {
		t.Errorf("type = %v", got["type"])
	}
	if got["imageUrl"] != "/assets/images/default-leader.jpg" {
		t.Errorf("imageUrl = %v", got["imageUrl"])
	}
}

func TestDocumentPopulatedImage(t *testing.T) {
	got := Document(bson.M{
		"_id":     primitive.NewObjectID(),
		"title":   "Walking in Faith",
		"speaker": "Pastor Mwansa",
		"date":    time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
		"image":   bson.M{"_id": primitive.NewObjectID(), "path": "/uploads/sermon-12.jpg"},
	})

	if got["type"] != TypeSermon {
		t.Errorf("type = %v", got["type"])
	}
	if got["imageUrl"] != "/uploads/sermon-12.jpg" {
		t.Errorf("imageUrl = %v", got["imageUrl"])
	}
	if got["date"] != "May 12, 2024" {
		t.Errorf("date = %v", got["date"])
	}
}

func TestDocumentUnpopulatedImageFallsBack(t *testing.T) {
	got := Document(bson.M{
		"_id":     primitive.NewObjectID(),
		"title":   "Walking in Faith",
		"speaker": "Pastor Mwansa",
		"image":   primitive.NewObjectID(), // bare reference, never populated
	})
	if got["imageUrl"] != "/assets/images/default-sermon.jpg" {
		t.Errorf("imageUrl = %v", got["imageUrl"])
	}
}

func TestDocumentCorruptedSermonDate(t *testing.T) {
	date := time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)
	doc := bson.M{
		"_id":     primitive.NewObjectID(),
		"title":   "Walking in Faith",
		"speaker": "Pastor Mwansa",
		"date":    bson.M{"imageUrl": "/uploads/sermon-12.jpg"},
	}

	if got := DocumentWithRaw(doc, bson.M{"date": date}); got["date"] != "May 12, 2024" {
		t.Errorf("with raw copy: date = %v", got["date"])
	}
	if got := Document(doc); got["date"] != Unavailable {
		t.Errorf("without raw copy: date = %v", got["date"])
	}
}

func TestDocumentIdempotent(t *testing.T) {
	doc := bson.M{
		"_id":       primitive.NewObjectID(),
		"title":     "Youth Conference",
		"startDate": primitive.NewDateTimeFromTime(time.Date(2024, time.August, 9, 18, 30, 0, 0, time.UTC)),
		"location":  "Main Auditorium",
	}
	once := Document(doc)
	twice := Document(once)

	for _, field := range []string{"id", "type", "imageUrl", "date", "time", "startDate"} {
		if !reflect.DeepEqual(once[field], twice[field]) {
			t.Errorf("%s changed on second pass: %v -> %v", field, once[field], twice[field])
		}
	}
}

func TestDocumentDoesNotMutateInput(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := bson.M{"_id": oid, "title": "Sunday Service", "startDate": "2024-06-02"}
	_ = Document(doc)
	if _, ok := doc["id"]; ok {
		t.Error("input gained id")
	}
	if doc["_id"] != oid {
		t.Error("input _id changed")
	}
}

func TestDocumentsAndNesting(t *testing.T) {
	memberOID := primitive.NewObjectID()
	docs := []bson.M{
		{
			"_id":        primitive.NewObjectID(),
			"name":       "Kabwata Cell",
			"meetingDay": "Wednesday",
			"members":    primitive.A{bson.M{"_id": memberOID, "name": "John"}},
			"zone":       primitive.NewObjectID(),
		},
	}
	got := Documents(docs)
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	cg := got[0]
	if cg["type"] != TypeCellGroup {
		t.Errorf("type = %v", cg["type"])
	}
	members, ok := cg["members"].([]any)
	if !ok || len(members) != 1 {
		t.Fatalf("members = %v", cg["members"])
	}
	member, ok := members[0].(bson.M)
	if !ok || member["id"] != memberOID.Hex() {
		t.Errorf("nested member = %v", members[0])
	}
	if _, ok := cg["zone"].(string); !ok {
		t.Errorf("zone reference not stringified: %v", cg["zone"])
	}
}

func TestInferTypeOrder(t *testing.T) {
	cases := []struct {
		doc  bson.M
		want string
	}{
		{bson.M{"startDate": "x", "title": "x", "speaker": "x"}, TypeEvent}, // first match wins
		{bson.M{"speaker": "x", "title": "x"}, TypeSermon},
		{bson.M{"memberSince": "2020", "fullName": "x"}, TypeRenewal},
		{bson.M{"preferredSession": "x", "fullName": "x"}, TypeFoundationClass},
		{bson.M{"eventType": "baptism", "fullName": "x"}, TypeEventSignup},
		{bson.M{"zoneLeader": "x", "name": "x"}, TypeZone},
		{bson.M{"meetingDay": "x", "name": "x"}, TypeCellGroup},
		{bson.M{"role": "x", "name": "x"}, TypeLeader},
		{bson.M{"notes": "x"}, ""},
	}
	for _, tc := range cases {
		if got := InferType(tc.doc); got != tc.want {
			t.Errorf("InferType(%v) = %q, want %q", tc.doc, got, tc.want)
		}
	}
}

func TestExplicitTypeWinsOverInference(t *testing.T) {
	got := Document(bson.M{"type": TypeMedia, "startDate": "2024-06-02", "title": "x"})
	if got["type"] != TypeMedia {
		t.Errorf("type = %v", got["type"])
	}
}
