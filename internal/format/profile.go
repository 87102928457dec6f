package format

// Entity type tags stamped on documents at creation time. Inference from
// field shape remains only for legacy documents written before tagging.
const (
	TypeEvent           = "event"
	TypeSermon          = "sermon"
	TypeLeader          = "leader"
	TypeCellGroup       = "cellGroup"
	TypeZone            = "zone"
	TypeMedia           = "media"
	TypeRenewal         = "membershipRenewal"
	TypeFoundationClass = "foundationClass"
	TypeEventSignup     = "eventSignup"
)

// Profile describes how one entity type is shaped on the way out: which
// fields hold dates, which hold image references, and the asset served when
// no image was ever attached.
type Profile struct {
	DateFields   []string
	ImageFields  []string
	DefaultImage string
}

var profiles = map[string]Profile{
	TypeEvent: {
		DateFields:   []string{"startDate", "endDate", "date"},
		ImageFields:  []string{"image", "coverImage"},
		DefaultImage: "/assets/images/default-event.jpg",
	},
	TypeSermon: {
		DateFields:   []string{"date"},
		ImageFields:  []string{"image", "coverImage"},
		DefaultImage: "/assets/images/default-sermon.jpg",
	},
	TypeLeader: {
		DateFields:   nil,
		ImageFields:  []string{"image", "leaderImage"},
		DefaultImage: "/assets/images/default-leader.jpg",
	},
	TypeCellGroup: {
		DateFields:   nil,
		ImageFields:  []string{"image", "leaderImage"},
		DefaultImage: "/assets/images/default-cell-group.jpg",
	},
	TypeZone: {
		DateFields:   nil,
		ImageFields:  []string{"image"},
		DefaultImage: "/assets/images/default-zone.jpg",
	},
	TypeMedia: {
		DateFields:   []string{"date"},
		ImageFields:  []string{"image"},
		DefaultImage: "/assets/images/default-media.jpg",
	},
	TypeRenewal: {
		DateFields:   []string{"birthday", "renewalDate"},
		ImageFields:  nil,
		DefaultImage: "",
	},
	TypeFoundationClass: {
		DateFields:   []string{"registrationDate"},
		ImageFields:  nil,
		DefaultImage: "",
	},
	TypeEventSignup: {
		DateFields:   []string{"childDateOfBirth", "submittedAt"},
		ImageFields:  nil,
		DefaultImage: "",
	},
}

var genericProfile = Profile{
	DateFields:   []string{"date", "startDate"},
	ImageFields:  []string{"image", "coverImage", "leaderImage"},
	DefaultImage: "/assets/images/default.jpg",
}

// inferRules are checked in order; the first shape match wins. The order
// matters: zones carry a name like cell groups, renewals a fullName like
// registrations.
var inferRules = []struct {
	typ    string
	fields []string
}{
	{TypeEvent, []string{"startDate", "title"}},
	{TypeSermon, []string{"speaker", "title"}},
	{TypeEventSignup, []string{"eventType", "fullName"}},
	{TypeRenewal, []string{"memberSince", "fullName"}},
	{TypeFoundationClass, []string{"preferredSession", "fullName"}},
	{TypeZone, []string{"zoneLeader", "name"}},
	{TypeCellGroup, []string{"meetingDay", "name"}},
	{TypeCellGroup, []string{"leader", "name"}},
	{TypeLeader, []string{"role", "name"}},
	{TypeMedia, []string{"mediaType", "fileUrl"}},
}

// InferType guesses an entity type from field co-occurrence. Best effort;
// documents written by this system carry an explicit type instead.
func InferType(doc map[string]any) string {
	for _, rule := range inferRules {
		match := true
		for _, f := range rule.fields {
			if v, ok := doc[f]; !ok || v == nil {
				match = false
				break
			}
		}
		if match {
			return rule.typ
		}
	}
	return ""
}

func profileFor(typ string) Profile {
	if p, ok := profiles[typ]; ok {
		return p
	}
	return genericProfile
}
