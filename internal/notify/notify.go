// Package notify composes and dispatches the emails triggered by form
// submissions and admin status changes. Delivery is asynchronous and a failed
// send never fails the request that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/wmatuze/vbc-web-sub001/internal/queue"
)

// Kinds of records a notification can be about.
const (
	KindRenewal         = "membershipRenewal"
	KindFoundationClass = "foundationClass"
	KindEventSignup     = "eventSignup"
)

// Events within a record's lifecycle.
const (
	EventReceived      = "received"
	EventStatusChanged = "statusChanged"
)

// MessageType tags queue envelopes carrying a notification.
const MessageType = "notification"

// Message is the unit of notification work handed to the worker.
type Message struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Event     string `json:"event"`
	To        string `json:"to"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	EventName string `json:"eventName,omitempty"`
}

// Publisher enqueues notification messages. Errors are logged and swallowed:
// notification delivery is best effort by design.
type Publisher struct {
	Queue queue.Queue
}

// NewPublisher wraps a queue.
func NewPublisher(q queue.Queue) *Publisher {
	return &Publisher{Queue: q}
}

// Publish enqueues msg. A missing recipient or queue failure is logged and
// dropped; the caller's operation has already succeeded.
func (p *Publisher) Publish(ctx context.Context, msg Message) {
	if p == nil || p.Queue == nil {
		return
	}
	if msg.To == "" {
		return
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("notification marshal failed: %v", err)
		return
	}
	if err := p.Queue.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		log.Printf("notification publish failed: %v", err)
	}
}

// Compose renders the subject and HTML body for a message.
func Compose(msg Message) (subject, html string) {
	name := msg.Name
	if name == "" {
		name = "there"
	}

	switch msg.Kind {
	case KindRenewal:
		if msg.Event == EventReceived {
			return "Membership renewal received",
				fmt.Sprintf("<p>Hi %s,</p><p>We received your membership renewal. Our team will review it and get back to you.</p>", name)
		}
		switch msg.Status {
		case "approved":
			return "Membership renewal approved",
				fmt.Sprintf("<p>Hi %s,</p><p>Your membership renewal has been approved. Welcome back!</p>", name)
		case "declined":
			return "Membership renewal update",
				fmt.Sprintf("<p>Hi %s,</p><p>Unfortunately your membership renewal could not be approved. Please contact the church office.</p>", name)
		}
		return "Membership renewal update",
			fmt.Sprintf("<p>Hi %s,</p><p>Your membership renewal is now %s.</p>", name, msg.Status)

	case KindFoundationClass:
		if msg.Event == EventReceived {
			return "Foundation class registration received",
				fmt.Sprintf("<p>Hi %s,</p><p>Thanks for registering for foundation classes. We will confirm your session shortly.</p>", name)
		}
		return "Foundation class update",
			fmt.Sprintf("<p>Hi %s,</p><p>Your foundation class registration is now %s.</p>", name, msg.Status)

	case KindEventSignup:
		event := msg.EventName
		if event == "" {
			event = "the event"
		}
		if msg.Event == EventReceived {
			return "Signup received",
				fmt.Sprintf("<p>Hi %s,</p><p>We received your signup for %s.</p>", name, event)
		}
		return "Signup update",
			fmt.Sprintf("<p>Hi %s,</p><p>Your signup for %s is now %s.</p>", name, event, msg.Status)
	}

	return "Victory Bible Church", fmt.Sprintf("<p>Hi %s,</p><p>There is an update on your request.</p>", name)
}

// Deliver decodes a queue envelope and sends the email. Unknown envelope
// types are ignored. Errors are returned so the worker can log them, but the
// worker never retries: delivery is fire and forget.
func Deliver(ctx context.Context, sender Sender, env queue.Message) error {
	if env.Type != MessageType {
		return nil
	}
	var msg Message
	if err := json.Unmarshal(env.Body, &msg); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	if msg.To == "" {
		return nil
	}
	subject, html := Compose(msg)
	_, err := sender.Send(ctx, SendRequest{To: []string{msg.To}, Subject: subject, HTML: html})
	return err
}
