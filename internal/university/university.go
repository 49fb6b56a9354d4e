package university

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// University represents a stored university
type University struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Ranking   int       `json:"ranking"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft holds the user-provided fields of a new university
type Draft struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city"`
	Ranking int    `json:"ranking" min:"0"`
}

// ValidationError represents an invalid university field or filter value
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for '%s': %s", err.Field, err.Reason)
}

// OfDraft validates a draft and turns it into a new university with a fresh ID
func OfDraft(draft *Draft, now time.Time) (*University, error) {
	obj := &University{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(draft.Name),
		Country:   strings.TrimSpace(draft.Country),
		City:      strings.TrimSpace(draft.City),
		Ranking:   draft.Ranking,
		CreatedAt: now.UTC(),
	}
	switch {
	case obj.Name == "":
		return nil, &ValidationError{Field: "name", Value: draft.Name, Reason: "must not be empty"}
	case obj.Country == "":
		return nil, &ValidationError{Field: "country", Value: draft.Country, Reason: "must not be empty"}
	case obj.Ranking < 0:
		return nil, &ValidationError{Field: "ranking", Value: draft.Ranking, Reason: "must not be negative"}
	}
	return obj, nil
}

// Compare orders two universities by one of the sort fields; unknown fields compare equal
func Compare(a, b *University, field string) int {
	switch field {
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortRanking:
		return cmp.Compare(a.Ranking, b.Ranking)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}
