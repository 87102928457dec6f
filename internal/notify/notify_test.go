package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/wmatuze/vbc-web-sub001/internal/queue"
)

type captureSender struct {
	sent []SendRequest
	err  error
}

func (c *captureSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	c.sent = append(c.sent, req)
	return SendResult{MessageID: "test"}, c.err
}

func TestComposeRenewal(t *testing.T) {
	cases := []struct {
		msg         Message
		wantSubject string
		wantInBody  string
	}{
		{Message{Kind: KindRenewal, Event: EventReceived, Name: "John"}, "Membership renewal received", "John"},
		{Message{Kind: KindRenewal, Event: EventStatusChanged, Status: "approved", Name: "John"}, "Membership renewal approved", "approved"},
		{Message{Kind: KindRenewal, Event: EventStatusChanged, Status: "declined", Name: "John"}, "Membership renewal update", "could not be approved"},
		{Message{Kind: KindFoundationClass, Event: EventStatusChanged, Status: "attending"}, "Foundation class update", "attending"},
		{Message{Kind: KindEventSignup, Event: EventReceived, EventName: "Baptism Sunday"}, "Signup received", "Baptism Sunday"},
	}
	for _, tc := range cases {
		subject, html := Compose(tc.msg)
		if subject != tc.wantSubject {
			t.Errorf("%+v: subject = %q, want %q", tc.msg, subject, tc.wantSubject)
		}
		if !strings.Contains(html, tc.wantInBody) {
			t.Errorf("%+v: body %q missing %q", tc.msg, html, tc.wantInBody)
		}
	}
}

func TestPublishDeliverRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(4)
	pub := NewPublisher(q)
	pub.Publish(ctx, Message{
		Kind:   KindRenewal,
		Event:  EventStatusChanged,
		To:     "john@example.com",
		Name:   "John",
		Status: "approved",
	})

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}
	env := <-msgs
	if env.Type != MessageType {
		t.Fatalf("envelope type = %q", env.Type)
	}

	sender := &captureSender{}
	if err := Deliver(ctx, sender, env); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails", len(sender.sent))
	}
	got := sender.sent[0]
	if got.To[0] != "john@example.com" {
		t.Errorf("to = %v", got.To)
	}
	if got.Subject != "Membership renewal approved" {
		t.Errorf("subject = %q", got.Subject)
	}
}

func TestPublishWithoutRecipientIsDropped(t *testing.T) {
	q := queue.NewInMemory(1)
	NewPublisher(q).Publish(context.Background(), Message{Kind: KindRenewal})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, _ := q.Consume(ctx)
	select {
	case env := <-msgs:
		t.Fatalf("unexpected message: %+v", env)
	default:
	}
}

func TestDeliverIgnoresForeignEnvelopes(t *testing.T) {
	sender := &captureSender{}
	if err := Deliver(context.Background(), sender, queue.Message{Type: "checkin"}); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent %d emails", len(sender.sent))
	}
}
