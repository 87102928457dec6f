package validate

// Status enums per entity kind.
var (
	RenewalStatuses         = []string{"pending", "approved", "declined"}
	FoundationClassStatuses = []string{"registered", "attending", "completed", "cancelled"}
	EventSignupStatuses     = []string{"pending", "approved", "declined"}

	EventSignupTypes = []string{"baptism", "babyDedication", "other"}
)

// MembershipRenewalRules constrain a membership renewal submission. The new
// address becomes required only when the member flags an address change, and
// the terms box has to be ticked.
var MembershipRenewalRules = map[string]Rule{
	"fullName":            {Type: TypeString, Required: true, MinLength: 2, MaxLength: 100, Label: "Full name"},
	"email":               {Type: TypeEmail, Required: true, Label: "Email"},
	"phone":               {Type: TypePhone, Required: true, Label: "Phone"},
	"birthday":            {Type: TypeDate, Required: true, Label: "Birthday"},
	"memberSince":         {Type: TypeString, Required: true, MaxLength: 50, Label: "Member since"},
	"ministryInvolvement": {Type: TypeString, MaxLength: 500, Label: "Ministry involvement"},
	"addressChange":       {Type: TypeBoolean, Label: "Address change"},
	"newAddress": {
		Type:      TypeString,
		MaxLength: 200,
		Label:     "New address",
		RequiredIf: func(doc map[string]any) bool {
			changed, _ := doc["addressChange"].(bool)
			return changed
		},
	},
	"agreeToTerms": {Type: TypeBoolean, Required: true, MustBeTrue: true, Label: "Terms agreement"},
}

// FoundationClassRules constrain a foundation class registration.
var FoundationClassRules = map[string]Rule{
	"fullName":         {Type: TypeString, Required: true, MinLength: 2, MaxLength: 100, Label: "Full name"},
	"email":            {Type: TypeEmail, Required: true, Label: "Email"},
	"phone":            {Type: TypePhone, Required: true, Label: "Phone"},
	"preferredSession": {Type: TypeString, Required: true, MaxLength: 100, Label: "Preferred session"},
	"questions":        {Type: TypeString, MaxLength: 1000, Label: "Questions"},
}

// EventSignupRules constrain an event signup request. Baptism and baby
// dedication signups carry their own conditional fields.
var EventSignupRules = map[string]Rule{
	"eventId":   {Type: TypeString, Required: true, Label: "Event"},
	"eventType": {Type: TypeString, Required: true, Enum: EventSignupTypes, Label: "Event type"},
	"fullName":  {Type: TypeString, Required: true, MinLength: 2, MaxLength: 100, Label: "Full name"},
	"email":     {Type: TypeEmail, Required: true, Label: "Email"},
	"phone":     {Type: TypePhone, Required: true, Label: "Phone"},
	"testimony": {
		Type:      TypeString,
		MaxLength: 2000,
		Label:     "Testimony",
		RequiredIf: func(doc map[string]any) bool {
			return doc["eventType"] == "baptism"
		},
	},
	"previousReligion": {Type: TypeString, MaxLength: 200, Label: "Previous religion"},
	"childName": {
		Type:      TypeString,
		MaxLength: 100,
		Label:     "Child name",
		RequiredIf: func(doc map[string]any) bool {
			return doc["eventType"] == "babyDedication"
		},
	},
	"childDateOfBirth": {
		Type:  TypeDate,
		Label: "Child date of birth",
		RequiredIf: func(doc map[string]any) bool {
			return doc["eventType"] == "babyDedication"
		},
	},
	"parentNames": {
		Type:      TypeString,
		MaxLength: 200,
		Label:     "Parent names",
		RequiredIf: func(doc map[string]any) bool {
			return doc["eventType"] == "babyDedication"
		},
	},
}

// MembershipRenewal validates a renewal submission.
func MembershipRenewal(doc map[string]any) Result {
	return Apply(MembershipRenewalRules, doc)
}

// FoundationClassRegistration validates a class registration.
func FoundationClassRegistration(doc map[string]any) Result {
	return Apply(FoundationClassRules, doc)
}

// EventSignup validates an event signup request.
func EventSignup(doc map[string]any) Result {
	return Apply(EventSignupRules, doc)
}

// MembershipStatusChange validates a renewal status transition.
func MembershipStatusChange(status string) Result {
	return Status(status, RenewalStatuses)
}

// FoundationClassStatusChange validates a registration status transition.
func FoundationClassStatusChange(status string) Result {
	return Status(status, FoundationClassStatuses)
}

// EventSignupStatusChange validates a signup status transition.
func EventSignupStatusChange(status string) Result {
	return Status(status, EventSignupStatuses)
}
