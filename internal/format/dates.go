package format

import (
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unavailable is the sentinel returned when no valid date can be recovered
// from a field. The frontend renders it verbatim.
const Unavailable = "Date unavailable"

const displayDateLayout = "January 2, 2006"
const displayTimeLayout = "3:04 PM"

// FormatDate formats a genuine time value as "January 2, 2006". It accepts
// time.Time, *time.Time and bson datetimes; anything else, including zero
// times, reports ok=false.
func FormatDate(v any) (string, bool) {
	t, ok := timeValue(v)
	if !ok || t.IsZero() {
		return "", false
	}
	return t.Format(displayDateLayout), true
}

// FormatClock formats the time-of-day part of a value as "3:04 PM".
func FormatClock(v any) (string, bool) {
	t, ok := timeValue(v)
	if !ok || t.IsZero() {
		return "", false
	}
	return t.Format(displayTimeLayout), true
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case primitive.DateTime:
		return t.Time().UTC(), true
	default:
		return time.Time{}, false
	}
}

// looksFormatted reports whether a string already resembles display output
// ("June 2, 2024"). A comma next to alphabetic text is taken as proof; this
// is a heuristic, not a parser.
func looksFormatted(s string) bool {
	if !strings.Contains(s, ",") {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

var looseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	displayDateLayout,
}

// ParseLoose parses the date-ish strings the legacy data contains.
func ParseLoose(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDateField produces the display value for a date field. raw is the
// backing copy of the document (pre-mutation) used to recover fields that were
// clobbered elsewhere; it may be nil. The chain is: recover from raw, format a
// time value, re-parse a string, sentinel. It never panics.
func NormalizeDateField(doc, raw bson.M, field string) string {
	val, present := doc[field]

	// A date field holding an object with an imageUrl key is the known
	// clobbering pattern; the raw document may still hold the real date.
	if corruptedDate(val) {
		if raw != nil {
			if s, ok := normalizeValue(raw[field]); ok {
				return s
			}
		}
		return Unavailable
	}

	if !present || val == nil {
		if raw != nil {
			if s, ok := normalizeValue(raw[field]); ok {
				return s
			}
		}
		return Unavailable
	}

	if s, ok := normalizeValue(val); ok {
		return s
	}
	return Unavailable
}

func normalizeValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if s, ok := FormatDate(v); ok {
		return s, true
	}
	if s, ok := v.(string); ok {
		if looksFormatted(s) {
			return s, true
		}
		if t, ok := ParseLoose(s); ok {
			return t.Format(displayDateLayout), true
		}
	}
	return "", false
}

// corruptedDate detects a date field overwritten with an image payload.
func corruptedDate(v any) bool {
	switch m := v.(type) {
	case bson.M:
		_, has := m["imageUrl"]
		return has
	case map[string]any:
		_, has := m["imageUrl"]
		return has
	default:
		return false
	}
}
