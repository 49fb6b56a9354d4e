package offer

import (
	"cmp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category represents the degree level of an offer
type Category string

const (
	CategoryBachelor Category = "Bachelor"
	CategoryMaster   Category = "Master"
	CategoryPhD      Category = "PhD"
	CategoryLanguage Category = "Language"
)

// Valid reports whether the category is one of the known ones
func (category Category) Valid() bool {
	switch category {
	case CategoryBachelor, CategoryMaster, CategoryPhD, CategoryLanguage:
		return true
	}
	return false
}

// Offer represents a stored study offer
type Offer struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	UniversityID uuid.UUID `json:"university_id"`
	Category     Category  `json:"category"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	Language     string    `json:"language"`
	Tuition      float64   `json:"tuition"`
	Deadline     time.Time `json:"deadline"`
	Scholarship  bool      `json:"scholarship"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

// Draft holds the user-provided fields of a new offer
type Draft struct {
	Title        string    `json:"title"`
	UniversityID uuid.UUID `json:"university_id"`
	Category     Category  `json:"category"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	Language     string    `json:"language"`
	Tuition      float64   `json:"tuition" min:"0"`
	Deadline     time.Time `json:"deadline"`
	Scholarship  bool      `json:"scholarship"`
	Tags         []string  `json:"tags" maxItems:"20"`
}

// OfDraft validates a draft and turns it into a new offer with a fresh ID.
// All string fields are sanitized (leading and trailing spaces are trimmed).
func OfDraft(draft *Draft, now time.Time) (*Offer, error) {
	obj := &Offer{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(draft.Title),
		UniversityID: draft.UniversityID,
		Category:     draft.Category,
		Country:      strings.TrimSpace(draft.Country),
		City:         strings.TrimSpace(draft.City),
		Language:     strings.TrimSpace(draft.Language),
		Tuition:      draft.Tuition,
		Deadline:     draft.Deadline.UTC(),
		Scholarship:  draft.Scholarship,
		Tags:         make([]string, 0, len(draft.Tags)),
		CreatedAt:    now.UTC(),
	}
	for _, tag := range draft.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			obj.Tags = append(obj.Tags, tag)
		}
	}

	switch {
	case obj.Title == "":
		return nil, invalid("title", draft.Title, "must not be empty")
	case obj.UniversityID == uuid.Nil:
		return nil, invalid("university_id", draft.UniversityID, "must reference a university")
	case !obj.Category.Valid():
		return nil, invalid("category", draft.Category, "must be one of Bachelor, Master, PhD or Language")
	case obj.Country == "":
		return nil, invalid("country", draft.Country, "must not be empty")
	case obj.Tuition < 0:
		return nil, invalid("tuition", draft.Tuition, "must not be negative")
	}
	return obj, nil
}

// Compare orders two offers by one of the sort fields; unknown fields compare equal
func Compare(a, b *Offer, field string) int {
	switch field {
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortTuition:
		return cmp.Compare(a.Tuition, b.Tuition)
	case SortDeadline:
		return a.Deadline.Compare(b.Deadline)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}
