package models

// Section identifies one step of the onboarding wizard. The set is closed:
// any other value is rejected at the API boundary.
type Section string

const (
	SectionProfile      Section = "profile"
	SectionPersonalInfo Section = "personal_info"
	SectionPayment      Section = "payment"
	SectionTours        Section = "tours"
	SectionCalendar     Section = "calendar"
	SectionQuiz         Section = "quiz"
)

// SectionOrder is the order sections appear in the wizard.
var SectionOrder = []Section{
	SectionProfile,
	SectionPersonalInfo,
	SectionPayment,
	SectionTours,
	SectionCalendar,
	SectionQuiz,
}

// ParseSection validates a raw section value against the known enum.
func ParseSection(raw string) (Section, bool) {
	s := Section(raw)
	for _, known := range SectionOrder {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// SectionMeta is static metadata about a wizard section, used for provisional
// guidance while the corpus is still loading.
type SectionMeta struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Requirements  []string `json:"requirements"`
	EstimatedTime string   `json:"estimated_time"`
}

var sectionMeta = map[Section]SectionMeta{
	SectionProfile: {
		Title:         "Guide Profile",
		Description:   "Public profile shown to travelers: photo, display name and bio.",
		Requirements:  []string{"Profile photo", "Display name", "Short bio (50-500 characters)"},
		EstimatedTime: "10 minutes",
	},
	SectionPersonalInfo: {
		Title:         "Personal Information",
		Description:   "Legal name, contact details and identity verification.",
		Requirements:  []string{"Legal full name", "Phone number", "Government-issued ID"},
		EstimatedTime: "15 minutes",
	},
	SectionPayment: {
		Title:         "Payment Setup",
		Description:   "Bank account or payout method for receiving earnings.",
		Requirements:  []string{"Bank account or supported payout method", "Tax residency details"},
		EstimatedTime: "10 minutes",
	},
	SectionTours: {
		Title:         "Tour Listings",
		Description:   "At least one tour with itinerary, pricing and photos.",
		Requirements:  []string{"Tour title and description", "Itinerary", "Pricing", "At least 3 photos"},
		EstimatedTime: "30 minutes",
	},
	SectionCalendar: {
		Title:         "Availability Calendar",
		Description:   "Dates and time slots when tours can be booked.",
		Requirements:  []string{"Weekly availability", "Blocked dates", "Booking lead time"},
		EstimatedTime: "10 minutes",
	},
	SectionQuiz: {
		Title:         "Onboarding Quiz",
		Description:   "Short quiz confirming the guide policies were understood.",
		Requirements:  []string{"All previous sections completed", "Passing score of 80%"},
		EstimatedTime: "15 minutes",
	},
}

// MetaFor returns the static metadata for a section.
func MetaFor(section Section) SectionMeta {
	return sectionMeta[section]
}

// RelatedSections returns the wizard neighbors of a section, previous first.
func RelatedSections(section Section) []Section {
	related := make([]Section, 0, 2)
	for i, s := range SectionOrder {
		if s != section {
			continue
		}
		if i > 0 {
			related = append(related, SectionOrder[i-1])
		}
		if i < len(SectionOrder)-1 {
			related = append(related, SectionOrder[i+1])
		}
		break
	}
	return related
}
