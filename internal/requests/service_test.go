package requests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wmatuze/vbc-web-sub001/internal/notify"
	"github.com/wmatuze/vbc-web-sub001/internal/queue"
)

type fakeRepo struct {
	inserts int
	updates int
	saved   bson.M
	doc     bson.M
	err     error
}

func (f *fakeRepo) Insert(_ context.Context, _ string, doc bson.M) (bson.M, error) {
	f.inserts++
	f.saved = doc
	return doc, f.err
}

func (f *fakeRepo) List(_ context.Context, _ string) ([]bson.M, error) {
	if f.doc == nil {
		return nil, f.err
	}
	return []bson.M{f.doc}, f.err
}

func (f *fakeRepo) UpdateStatus(_ context.Context, _ string, _ string, status string) (bson.M, error) {
	f.updates++
	if f.err != nil {
		return nil, f.err
	}
	out := bson.M{"status": status}
	for k, v := range f.doc {
		if k != "status" {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, _ string, _ string) error {
	return f.err
}

// receiveNotification pulls one notification message off the queue.
func receiveNotification(t *testing.T, ctx context.Context, q queue.Queue) notify.Message {
	t.Helper()
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case env := <-msgs:
		if env.Type != notify.MessageType {
			t.Fatalf("envelope type = %q", env.Type)
		}
		var msg notify.Message
		if err := json.Unmarshal(env.Body, &msg); err != nil {
			t.Fatal(err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no notification published")
		return notify.Message{}
	}
}

func TestSubmitInvalidSkipsInsert(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)

	doc, res, err := svc.Submit(context.Background(), Renewals, map[string]any{
		"fullName": "John Doe",
		// email, phone, agreeToTerms missing
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsValid {
		t.Fatal("incomplete renewal validated")
	}
	if doc != nil {
		t.Fatalf("doc = %v, want nil", doc)
	}
	if repo.inserts != 0 {
		t.Fatalf("repo.Insert called %d times on invalid input", repo.inserts)
	}
}

func TestSubmitPublishesReceivedNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(4)
	repo := &fakeRepo{}
	svc := NewService(repo, notify.NewPublisher(q), nil)

	_, res, err := svc.Submit(ctx, Renewals, map[string]any{
		"fullName":     "John Doe",
		"email":        "john@example.com",
		"phone":        "0971234567",
		"birthday":     "1990-01-01",
		"memberSince":  "2020",
		"agreeToTerms": true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsValid {
		t.Fatalf("errors = %v", res.Errors)
	}

	msg := receiveNotification(t, ctx, q)
	if msg.Kind != notify.KindRenewal || msg.Event != notify.EventReceived {
		t.Fatalf("published %+v", msg)
	}
	if msg.To != "john@example.com" {
		t.Fatalf("to = %q", msg.To)
	}
}

func TestChangeStatusPublishesNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(4)
	repo := &fakeRepo{doc: bson.M{
		"_id":      primitive.NewObjectID(),
		"fullName": "John Doe",
		"email":    "john@example.com",
	}}
	svc := NewService(repo, notify.NewPublisher(q), nil)

	doc, res, err := svc.ChangeStatus(ctx, Renewals, primitive.NewObjectID().Hex(), "approved")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsValid {
		t.Fatalf("errors = %v", res.Errors)
	}
	if doc["status"] != "approved" {
		t.Fatalf("status = %v", doc["status"])
	}

	msg := receiveNotification(t, ctx, q)
	if msg.Event != notify.EventStatusChanged || msg.Status != "approved" {
		t.Fatalf("published %+v", msg)
	}
}

func TestChangeStatusRejectsUnknownEnum(t *testing.T) {
	repo := &fakeRepo{doc: bson.M{"email": "john@example.com"}}
	svc := NewService(repo, nil, nil)

	doc, res, err := svc.ChangeStatus(context.Background(), Renewals, primitive.NewObjectID().Hex(), "graduated")
	if err != nil {
		t.Fatal(err)
	}
	if res.IsValid {
		t.Fatal("unknown status accepted")
	}
	if doc != nil {
		t.Fatalf("doc = %v, want nil", doc)
	}
	if repo.updates != 0 {
		t.Fatalf("repo.UpdateStatus called %d times on bad enum", repo.updates)
	}
}

func TestBuildSubmissionRenewal(t *testing.T) {
	payload := map[string]any{
		"fullName":     "John Doe",
		"email":        "john@example.com",
		"phone":        "1234567890",
		"birthday":     "1990-01-01",
		"memberSince":  "2020",
		"agreeToTerms": true,
		"status":       "approved", // not in the rule table, must be ignored
		"isAdmin":      true,       // ditto
	}
	doc := buildSubmission(Renewals, payload)

	if doc["status"] != "pending" {
		t.Errorf("status = %v, submitters cannot pick their status", doc["status"])
	}
	if _, ok := doc["isAdmin"]; ok {
		t.Error("unknown field copied into record")
	}
	if doc["type"] != Renewals.Type {
		t.Errorf("type = %v", doc["type"])
	}

	birthday, ok := doc["birthday"].(time.Time)
	if !ok {
		t.Fatalf("birthday = %T(%v), want time.Time", doc["birthday"], doc["birthday"])
	}
	if birthday.Year() != 1990 || birthday.Month() != time.January {
		t.Errorf("birthday = %v", birthday)
	}

	if _, ok := doc["renewalDate"].(time.Time); !ok {
		t.Errorf("renewalDate = %T", doc["renewalDate"])
	}
}

func TestBuildSubmissionSignupEventID(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := buildSubmission(EventSignups, map[string]any{
		"eventId":   oid.Hex(),
		"eventType": "other",
		"fullName":  "Jane Banda",
		"email":     "jane@example.com",
		"phone":     "0971234567",
	})

	got, ok := doc["eventId"].(primitive.ObjectID)
	if !ok || got != oid {
		t.Fatalf("eventId = %T(%v), want ObjectID %s", doc["eventId"], doc["eventId"], oid.Hex())
	}
	if doc["status"] != "pending" {
		t.Errorf("status = %v", doc["status"])
	}
	if _, ok := doc["submittedAt"].(time.Time); !ok {
		t.Errorf("submittedAt = %T", doc["submittedAt"])
	}
}

func TestBuildSubmissionFoundationDefaults(t *testing.T) {
	doc := buildSubmission(FoundationClasses, map[string]any{
		"fullName":         "Mary Phiri",
		"email":            "mary@example.com",
		"phone":            "0961112222",
		"preferredSession": "Sunday 9AM",
	})
	if doc["status"] != "registered" {
		t.Errorf("status = %v", doc["status"])
	}
	if _, ok := doc["registrationDate"].(time.Time); !ok {
		t.Errorf("registrationDate = %T", doc["registrationDate"])
	}
}
