// Package validate checks form submissions and status transitions against
// declarative per-entity rule tables before anything reaches storage.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Field type tags used by rules.
const (
	TypeString  = "string"
	TypeEmail   = "email"
	TypePhone   = "phone"
	TypeDate    = "date"
	TypeBoolean = "boolean"
)

// Rule constrains a single field of a candidate record.
type Rule struct {
	Type       string
	Required   bool
	RequiredIf func(doc map[string]any) bool
	MinLength  int
	MaxLength  int
	Enum       []string
	MustBeTrue bool
	Label      string
}

// Result is the outcome of validating a record.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Tolerates separators and an optional country code: digits, spaces,
	// dashes, dots and parentheses, 7 to 20 significant characters.
	phoneRe = regexp.MustCompile(`^\+?[0-9(][0-9\s\-.()]{5,19}$`)
)

// Apply checks doc against rules and collects one message per failing field.
// The required check runs before the type check; conditional requirements see
// the whole candidate record.
func Apply(rules map[string]Rule, doc map[string]any) Result {
	res := Result{IsValid: true, Errors: map[string]string{}}

	for field, rule := range rules {
		label := rule.Label
		if label == "" {
			label = field
		}
		val, present := doc[field]

		required := rule.Required
		if !required && rule.RequiredIf != nil {
			required = rule.RequiredIf(doc)
		}

		if isEmpty(val) || !present {
			if required {
				res.fail(field, label+" is required")
			}
			continue
		}

		if msg := checkType(rule, label, val); msg != "" {
			res.fail(field, msg)
		}
	}
	return res
}

func (r *Result) fail(field, msg string) {
	r.IsValid = false
	r.Errors[field] = msg
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func checkType(rule Rule, label string, val any) string {
	switch rule.Type {
	case TypeString, "":
		s, ok := val.(string)
		if !ok {
			return label + " must be a string"
		}
		if rule.MinLength > 0 && len(s) < rule.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", label, rule.MinLength)
		}
		if rule.MaxLength > 0 && len(s) > rule.MaxLength {
			return fmt.Sprintf("%s must be at most %d characters", label, rule.MaxLength)
		}
		if len(rule.Enum) > 0 && !contains(rule.Enum, s) {
			return fmt.Sprintf("%s must be one of: %s", label, strings.Join(rule.Enum, ", "))
		}
	case TypeEmail:
		s, ok := val.(string)
		if !ok || !emailRe.MatchString(s) {
			return label + " must be a valid email address"
		}
	case TypePhone:
		s, ok := val.(string)
		if !ok || !phoneRe.MatchString(strings.TrimSpace(s)) {
			return label + " must be a valid phone number"
		}
	case TypeDate:
		if !isDateish(val) {
			return label + " must be a valid date"
		}
	case TypeBoolean:
		b, ok := val.(bool)
		if !ok {
			return label + " must be true or false"
		}
		if rule.MustBeTrue && !b {
			return label + " must be accepted"
		}
	}
	return ""
}

func isDateish(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return !t.IsZero()
	case string:
		_, ok := parseDate(t)
		return ok
	default:
		return false
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "01/02/2006"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Status validates a bare status value against an allowed set. This is the
// degenerate single-field case of Apply used by the status-change endpoints.
func Status(status string, allowed []string) Result {
	if contains(allowed, status) {
		return Result{IsValid: true, Errors: map[string]string{}}
	}
	return Result{
		IsValid: false,
		Errors: map[string]string{
			"status": fmt.Sprintf("status must be one of: %s", strings.Join(allowed, ", ")),
		},
	}
}
