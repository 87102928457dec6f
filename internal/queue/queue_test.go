package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(2)
	body, _ := json.Marshal(map[string]string{"to": "john@example.com"})
	if err := q.Publish(ctx, Message{Type: "notification", Body: body}); err != nil {
		t.Fatal(err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-msgs:
		if got.Type != "notification" {
			t.Fatalf("type = %q", got.Type)
		}
		var decoded map[string]string
		if err := json.Unmarshal(got.Body, &decoded); err != nil {
			t.Fatalf("body: %v", err)
		}
		if decoded["to"] != "john@example.com" {
			t.Fatalf("body = %v", decoded)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishHonorsCancel(t *testing.T) {
	q := NewInMemory(0) // unbuffered, publish must block
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Publish(ctx, Message{Type: "notification"}); err == nil {
		t.Fatal("expected context error")
	}
}
