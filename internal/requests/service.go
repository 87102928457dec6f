package requests

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wmatuze/vbc-web-sub001/internal/format"
	"github.com/wmatuze/vbc-web-sub001/internal/notify"
	"github.com/wmatuze/vbc-web-sub001/internal/validate"
)

// Kind describes one request workflow: where it lives, which rule table
// guards submissions, and which enum guards status changes.
type Kind struct {
	Name           string
	Collection     string
	Type           string // entity tag stamped on new records
	NotifyKind     string
	Rules          map[string]validate.Rule
	Statuses       []string
	DefaultStatus  string
	SubmittedField string
}

// The three workflows the system runs.
var (
	Renewals = Kind{
		Name:           "membership renewal",
		Collection:     "renewals",
		Type:           format.TypeRenewal,
		NotifyKind:     notify.KindRenewal,
		Rules:          validate.MembershipRenewalRules,
		Statuses:       validate.RenewalStatuses,
		DefaultStatus:  "pending",
		SubmittedField: "renewalDate",
	}
	FoundationClasses = Kind{
		Name:           "foundation class registration",
		Collection:     "foundationregistrations",
		Type:           format.TypeFoundationClass,
		NotifyKind:     notify.KindFoundationClass,
		Rules:          validate.FoundationClassRules,
		Statuses:       validate.FoundationClassStatuses,
		DefaultStatus:  "registered",
		SubmittedField: "registrationDate",
	}
	EventSignups = Kind{
		Name:           "event signup",
		Collection:     "eventsignups",
		Type:           format.TypeEventSignup,
		NotifyKind:     notify.KindEventSignup,
		Rules:          validate.EventSignupRules,
		Statuses:       validate.EventSignupStatuses,
		DefaultStatus:  "pending",
		SubmittedField: "submittedAt",
	}
)

// EventLookup resolves an event id to its title for notification copy.
// Lookups are best effort; an empty title is fine.
type EventLookup interface {
	EventTitle(ctx context.Context, id string) string
}

// Store is the persistence the service needs. *Repository implements it.
type Store interface {
	Insert(ctx context.Context, collection string, doc bson.M) (bson.M, error)
	List(ctx context.Context, collection string) ([]bson.M, error)
	UpdateStatus(ctx context.Context, collection, id, status string) (bson.M, error)
	Delete(ctx context.Context, collection, id string) error
}

// Service runs the request workflows: validated submission, admin status
// changes with notifications, listing and deletion.
type Service struct {
	repo   Store
	pub    *notify.Publisher
	events EventLookup
}

// NewService creates a request service. pub and events may be nil.
func NewService(repo Store, pub *notify.Publisher, events EventLookup) *Service {
	return &Service{repo: repo, pub: pub, events: events}
}

// Submit validates a public submission and persists it with workflow
// defaults. The validation result carries field errors when invalid; the
// record is only written when it is valid.
func (s *Service) Submit(ctx context.Context, kind Kind, payload map[string]any) (bson.M, validate.Result, error) {
	res := validate.Apply(kind.Rules, payload)
	if !res.IsValid {
		return nil, res, nil
	}

	saved, err := s.repo.Insert(ctx, kind.Collection, buildSubmission(kind, payload))
	if err != nil {
		return nil, res, err
	}

	s.publish(ctx, kind, saved, notify.EventReceived, "")
	return format.Document(saved), res, nil
}

// buildSubmission turns a validated payload into the stored record: only
// fields the rule table knows are copied, date strings become real times,
// and the workflow stamps its defaults.
func buildSubmission(kind Kind, payload map[string]any) bson.M {
	doc := bson.M{
		"type":   kind.Type,
		"status": kind.DefaultStatus,
	}
	for field, rule := range kind.Rules {
		val, ok := payload[field]
		if !ok || val == nil {
			continue
		}
		if rule.Type == validate.TypeDate {
			if str, ok := val.(string); ok {
				if t, parsed := format.ParseLoose(str); parsed {
					val = t.UTC()
				}
			}
		}
		doc[field] = val
	}
	if kind.SubmittedField != "" {
		doc[kind.SubmittedField] = time.Now().UTC()
	}
	if kind.Collection == EventSignups.Collection {
		if hex, ok := doc["eventId"].(string); ok {
			if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
				doc["eventId"] = oid
			}
		}
	}
	return doc
}

// List returns all records of a kind, formatted.
func (s *Service) List(ctx context.Context, kind Kind) ([]bson.M, error) {
	docs, err := s.repo.List(ctx, kind.Collection)
	if err != nil {
		return nil, err
	}
	return format.Documents(docs), nil
}

// ChangeStatus validates and applies a status transition, then notifies the
// submitter. Notification failure does not fail the change.
func (s *Service) ChangeStatus(ctx context.Context, kind Kind, id, status string) (bson.M, validate.Result, error) {
	res := validate.Status(status, kind.Statuses)
	if !res.IsValid {
		return nil, res, nil
	}

	doc, err := s.repo.UpdateStatus(ctx, kind.Collection, id, status)
	if err != nil {
		return nil, res, err
	}

	s.publish(ctx, kind, doc, notify.EventStatusChanged, status)
	return format.Document(doc), res, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, kind Kind, id string) error {
	return s.repo.Delete(ctx, kind.Collection, id)
}

func (s *Service) publish(ctx context.Context, kind Kind, doc bson.M, event, status string) {
	if s.pub == nil {
		return
	}
	email, _ := doc["email"].(string)
	name, _ := doc["fullName"].(string)

	msg := notify.Message{
		Kind:   kind.NotifyKind,
		Event:  event,
		To:     email,
		Name:   name,
		Status: status,
	}
	if kind.NotifyKind == notify.KindEventSignup && s.events != nil {
		msg.EventName = s.events.EventTitle(ctx, eventIDHex(doc))
	}
	s.pub.Publish(ctx, msg)
}

func eventIDHex(doc bson.M) string {
	switch id := doc["eventId"].(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}
