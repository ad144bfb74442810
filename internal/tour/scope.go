package tour

import (
	"net/url"
	"strings"
)

// scopeAll is the cache/storage key used when no location is selected.
const scopeAll = "all"

// Scope bounds one pagination run. The zero value means all tours.
type Scope struct {
	LocationID string
}

// AllTours is the unrestricted scope.
var AllTours = Scope{}

// NewScope builds a Scope from a location identifier. "" and "all" both mean all tours.
func NewScope(locationID string) Scope {
	id := strings.TrimSpace(locationID)
	if strings.EqualFold(id, scopeAll) {
		id = ""
	}
	return Scope{LocationID: id}
}

// ScopeFromQuery resolves the scope from the location_id query parameter.
func ScopeFromQuery(q url.Values) Scope {
	return NewScope(q.Get("location_id"))
}

// IsAll reports whether the scope is unrestricted.
func (s Scope) IsAll() bool { return s.LocationID == "" }

// Key is a stable identifier for caches and storage.
func (s Scope) Key() string {
	if s.IsAll() {
		return scopeAll
	}
	return "location:" + s.LocationID
}

func (s Scope) String() string {
	if s.IsAll() {
		return scopeAll
	}
	return s.LocationID
}
