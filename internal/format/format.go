// Package format normalizes stored documents into the JSON shapes the
// frontend consumes: string ids, resolved image URLs, display date strings
// and a stable entity type tag. Formatting is best effort and never fails a
// response; unrecoverable dates degrade to the Unavailable sentinel.
package format

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents formats a list of documents.
func Documents(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Document(doc))
	}
	return out
}

// Document formats a single document. It does not mutate its input and is
// effectively idempotent: already-formatted fields pass through unchanged.
func Document(doc bson.M) bson.M {
	return DocumentWithRaw(doc, nil)
}

// DocumentWithRaw formats doc, consulting raw (a pre-mutation copy of the
// same record, may be nil) when a date field was clobbered with an image
// payload and the true value has to be recovered.
func DocumentWithRaw(doc, raw bson.M) bson.M {
	if doc == nil {
		return nil
	}
	out := make(bson.M, len(doc)+3)
	for k, v := range doc {
		out[k] = v
	}

	applyID(out)
	typ := applyType(out)
	p := profileFor(typ)

	// Event date/time display strings derive from startDate before the
	// field itself is normalized to a display string.
	if typ == TypeEvent {
		deriveEventDisplay(out)
	}

	applyImages(out, p)
	applyDates(out, raw, p)
	walkNested(out, p)

	return out
}

func applyID(out bson.M) {
	switch id := out["_id"].(type) {
	case primitive.ObjectID:
		hex := id.Hex()
		out["_id"] = hex
		out["id"] = hex
	case string:
		if _, ok := out["id"].(string); !ok {
			out["id"] = id
		}
	}
}

// applyType resolves the entity tag: explicit type, then category, then
// shape inference for legacy documents.
func applyType(out bson.M) string {
	if t, ok := out["type"].(string); ok && t != "" {
		return t
	}
	if c, ok := out["category"].(string); ok && c != "" {
		return c
	}
	if t := InferType(out); t != "" {
		out["type"] = t
		return t
	}
	return ""
}

func applyImages(out bson.M, p Profile) {
	for _, field := range p.ImageFields {
		urlKey := field + "Url"
		if existing, ok := out[urlKey].(string); ok && existing != "" {
			continue
		}
		url := resolveImageRef(out[field])
		if url == "" {
			url = p.DefaultImage
		}
		if url != "" {
			out[urlKey] = url
		}
	}
}

// resolveImageRef extracts a usable URL from an image field: a populated
// media document exposes its path, a plain string is already a URL, and an
// unpopulated ObjectID reference resolves to nothing.
func resolveImageRef(v any) string {
	switch ref := v.(type) {
	case bson.M:
		if p, ok := ref["path"].(string); ok && p != "" {
			return p
		}
		if p, ok := ref["secureUrl"].(string); ok && p != "" {
			return p
		}
	case map[string]any:
		return resolveImageRef(bson.M(ref))
	case string:
		return ref
	}
	return ""
}

func applyDates(out, raw bson.M, p Profile) {
	for _, field := range p.DateFields {
		_, present := out[field]
		if !present && (raw == nil || raw[field] == nil) {
			continue
		}
		out[field] = NormalizeDateField(out, raw, field)
	}
}

func deriveEventDisplay(out bson.M) {
	start := out["startDate"]
	if s, ok := out["date"].(string); !ok || s == "" {
		if display, ok := normalizeValue(start); ok {
			out["date"] = display
		}
	}
	if s, ok := out["time"].(string); !ok || s == "" {
		if clock, ok := displayClock(start); ok {
			out["time"] = clock
		}
	}
}

func displayClock(v any) (string, bool) {
	if s, ok := FormatClock(v); ok {
		return s, true
	}
	if str, ok := v.(string); ok {
		if t, ok := ParseLoose(str); ok {
			return t.Format(displayTimeLayout), true
		}
	}
	return "", false
}

// walkNested recurses into nested documents and arrays and converts
// remaining bson scalars to JSON-safe values. Date fields are excluded so
// display strings are not re-processed as objects.
func walkNested(out bson.M, p Profile) {
	skip := make(map[string]bool, len(p.DateFields))
	for _, f := range p.DateFields {
		skip[f] = true
	}
	for _, f := range genericProfile.DateFields {
		skip[f] = true
	}

	for k, v := range out {
		if skip[k] {
			continue
		}
		switch val := v.(type) {
		case bson.M:
			out[k] = Document(val)
		case map[string]any:
			out[k] = Document(bson.M(val))
		case primitive.A:
			out[k] = formatSlice([]any(val))
		case []any:
			out[k] = formatSlice(val)
		case []bson.M:
			out[k] = Documents(val)
		case primitive.ObjectID:
			out[k] = val.Hex()
		case primitive.DateTime:
			out[k] = val.Time().UTC()
		}
	}
}

func formatSlice(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		switch el := v.(type) {
		case bson.M:
			out[i] = Document(el)
		case map[string]any:
			out[i] = Document(bson.M(el))
		case primitive.ObjectID:
			out[i] = el.Hex()
		default:
			out[i] = v
		}
	}
	return out
}
