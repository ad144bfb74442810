package tour

import (
	"net/url"
	"strings"
)

// FilterState holds the optional listing filters. An empty field places no constraint.
//
// Language and Time have no dedicated attribute on Tour: Language is matched
// against Title and Time against Duration, both as case-sensitive substrings.
type FilterState struct {
	Price    string `json:"price,omitempty" yaml:"price,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Time     string `json:"time,omitempty" yaml:"time,omitempty"`
}

// FilterFromQuery reads price, language, duration and time query parameters.
func FilterFromQuery(q url.Values) FilterState {
	return FilterState{
		Price:    q.Get("price"),
		Language: q.Get("language"),
		Duration: q.Get("duration"),
		Time:     q.Get("time"),
	}
}

// IsZero reports whether no filter is set.
func (f FilterState) IsZero() bool {
	return f == FilterState{}
}

// Matches reports whether t satisfies every set field.
func (f FilterState) Matches(t Tour) bool {
	if f.Price != "" && t.SalePrice.String() != f.Price {
		return false
	}
	if f.Language != "" && !strings.Contains(t.Title, f.Language) {
		return false
	}
	if f.Duration != "" && !strings.Contains(t.Duration, f.Duration) {
		return false
	}
	if f.Time != "" && !strings.Contains(t.Duration, f.Time) {
		return false
	}
	return true
}

// Filter returns the tours matching f in their original order. The input is not modified.
func Filter(tours []Tour, f FilterState) []Tour {
	out := make([]Tour, 0, len(tours))
	for _, t := range tours {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
