package tour

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexString holds a JSON value that upstream sends either as a string or as a
// number. The literal text is kept so exact-match comparisons see what the API sent.
type FlexString string

// UnmarshalJSON accepts strings, numbers and null.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding string value: %w", err)
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding %s as string or number: %w", b, err)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the literal text.
func (f FlexString) String() string { return string(f) }

// Float parses the value as a number. ok is false when it is empty or not numeric.
func (f FlexString) Float() (v float64, ok bool) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReviewScore is the aggregated review summary of a tour.
type ReviewScore struct {
	TotalScore   float64 `json:"total_score"`
	TotalReviews int     `json:"total_reviews"`
}

// Location is the place a tour belongs to.
type Location struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
}

// Tour is a single listing as returned by the search endpoint.
type Tour struct {
	ID          FlexString  `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug,omitempty"`
	Duration    string      `json:"duration"`
	Price       FlexString  `json:"price,omitempty"`
	SalePrice   FlexString  `json:"sale_price"`
	Image       string      `json:"image_url,omitempty"`
	ReviewScore ReviewScore `json:"review_score"`
	Location    *Location   `json:"location,omitempty"`
}

// TourDetail is the full record returned by the detail endpoint.
type TourDetail struct {
	Tour
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Images      []string `json:"images,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
}

// PageMeta carries the pagination signal. HasMore is nil when upstream omits it.
type PageMeta struct {
	HasMore *bool `json:"has_more"`
}

// SearchPage is one page of the search endpoint.
type SearchPage struct {
	Data []Tour    `json:"data"`
	Meta *PageMeta `json:"meta,omitempty"`
}

type detailResponse struct {
	Data TourDetail `json:"data"`
}

// Snapshot is an accumulated listing persisted for a scope.
type Snapshot struct {
	ID         int
	Scope      string
	LocationID string
	Tours      []Tour
	TourCount  int
	FetchedAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FreshAt reports whether the snapshot is younger than maxAge at now.
// A non-positive maxAge means snapshots never expire.
func (s *Snapshot) FreshAt(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(s.FetchedAt) < maxAge
}
