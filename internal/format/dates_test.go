package format

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFormatDate(t *testing.T) {
	june2 := time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC)

	if s, ok := FormatDate(june2); !ok || s != "June 2, 2024" {
		t.Fatalf("got %q ok=%v", s, ok)
	}
	if s, ok := FormatDate(&june2); !ok || s != "June 2, 2024" {
		t.Fatalf("pointer: got %q ok=%v", s, ok)
	}
	if s, ok := FormatDate(primitive.NewDateTimeFromTime(june2)); !ok || s != "June 2, 2024" {
		t.Fatalf("bson datetime: got %q ok=%v", s, ok)
	}

	for _, v := range []any{nil, "2024-06-02", 42, time.Time{}, (*time.Time)(nil), bson.M{"imageUrl": "x"}} {
		if s, ok := FormatDate(v); ok {
			t.Errorf("FormatDate(%v) = %q, expected not ok", v, s)
		}
	}
}

func TestParseLoose(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-06-02T09:00:00Z", "June 2, 2024", true},
		{"2024-06-02", "June 2, 2024", true},
		{"01/15/2023", "January 15, 2023", true},
		{"June 2, 2024", "June 2, 2024", true},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseLoose(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseLoose(%q) ok=%v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && got.Format(displayDateLayout) != tc.want {
			t.Errorf("ParseLoose(%q) = %q, want %q", tc.in, got.Format(displayDateLayout), tc.want)
		}
	}
}

func TestNormalizeDateField(t *testing.T) {
	june2 := time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC)

	t.Run("time value", func(t *testing.T) {
		doc := bson.M{"date": june2}
		if got := NormalizeDateField(doc, nil, "date"); got != "June 2, 2024" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("pre-formatted string passes through", func(t *testing.T) {
		doc := bson.M{"date": "Easter Sunday, 2024"}
		if got := NormalizeDateField(doc, nil, "date"); got != "Easter Sunday, 2024" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("iso string reparsed", func(t *testing.T) {
		doc := bson.M{"date": "2024-06-02"}
		if got := NormalizeDateField(doc, nil, "date"); got != "June 2, 2024" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("clobbered field recovers from raw copy", func(t *testing.T) {
		doc := bson.M{"date": bson.M{"imageUrl": "/uploads/pic.jpg"}}
		raw := bson.M{"date": june2}
		if got := NormalizeDateField(doc, raw, "date"); got != "June 2, 2024" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("clobbered field without raw copy degrades", func(t *testing.T) {
		doc := bson.M{"date": map[string]any{"imageUrl": "/uploads/pic.jpg"}}
		if got := NormalizeDateField(doc, nil, "date"); got != Unavailable {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("missing and junk values degrade", func(t *testing.T) {
		for _, doc := range []bson.M{{}, {"date": nil}, {"date": 17}, {"date": "gibberish"}} {
			if got := NormalizeDateField(doc, nil, "date"); got != Unavailable {
				t.Errorf("doc %v: got %q", doc, got)
			}
		}
	})

	t.Run("sentinel is stable", func(t *testing.T) {
		doc := bson.M{"date": Unavailable}
		if got := NormalizeDateField(doc, nil, "date"); got != Unavailable {
			t.Fatalf("got %q", got)
		}
	})
}
