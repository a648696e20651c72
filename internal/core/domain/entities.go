package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized is returned when the upstream API rejects the session credential.
var ErrUnauthorized = errors.New("unauthorized")

// Credentials carries the caller's session credential to the upstream API.
// The upstream API owns authentication; we only forward what the browser sent.
type Credentials struct {
	Cookie string
}

// Empty reports whether no credential was supplied.
func (c Credentials) Empty() bool { return c.Cookie == "" }

// Dog is a hydrated adoptable dog record.
type Dog struct {
	ID      string `json:"id"`
	Img     string `json:"img"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	ZipCode string `json:"zip_code"`
	Breed   string `json:"breed"`
}

// SearchResult is the ID page returned by the upstream search endpoint.
type SearchResult struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	Next      string   `json:"next,omitempty"`
	Prev      string   `json:"prev,omitempty"`
}

// Location is upstream reference data for a US zip code.
type Location struct {
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	County    string  `json:"county"`
}

// Point returns the location as a GeoPoint.
func (l Location) Point() GeoPoint {
	return GeoPoint{Lat: l.Latitude, Lon: l.Longitude}
}

// LocationSearchResult is returned by the upstream location search.
type LocationSearchResult struct {
	Results []Location `json:"results"`
	Total   int        `json:"total"`
}

// SearchFilter is built fresh for every submitted search.
type SearchFilter struct {
	Breeds   []string   `json:"breeds,omitempty"`
	ZipCodes []string   `json:"zipCodes,omitempty"`
	MinAge   *int       `json:"minAge,omitempty"`
	MaxAge   *int       `json:"maxAge,omitempty"`
	Sort     string     `json:"sort,omitempty"`
	Size     int        `json:"size,omitempty"`
	From     string     `json:"from,omitempty"`
	Near     *GeoFilter `json:"near,omitempty"`
}

// Validate checks the age range and geo filter.
func (f SearchFilter) Validate() error {
	if f.MinAge != nil && *f.MinAge < 0 {
		return fmt.Errorf("minAge must be >= 0, got %d", *f.MinAge)
	}
	if f.MaxAge != nil && *f.MaxAge < 0 {
		return fmt.Errorf("maxAge must be >= 0, got %d", *f.MaxAge)
	}
	if f.MinAge != nil && f.MaxAge != nil && *f.MaxAge < *f.MinAge {
		return fmt.Errorf("maxAge (%d) must be >= minAge (%d)", *f.MaxAge, *f.MinAge)
	}
	if f.Near != nil {
		if f.Near.ZipCode == "" {
			return errors.New("zip code is required for a radius search")
		}
		if f.Near.RadiusMiles <= 0 {
			return fmt.Errorf("radius must be positive, got %g", f.Near.RadiusMiles)
		}
	}
	return nil
}

// SearchStatus is the orchestrator's position in the search state machine.
type SearchStatus string

const (
	StatusIdle            SearchStatus = "idle"
	StatusFetchingIDs     SearchStatus = "fetching_ids"
	StatusFetchingDetails SearchStatus = "fetching_details"
	StatusSuccess         SearchStatus = "success"
	StatusFailed          SearchStatus = "failed"
	StatusUnauthorized    SearchStatus = "unauthorized"
)

// Terminal reports whether no further transition happens without a new submit.
func (s SearchStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusUnauthorized
}

// SearchState is what a caller renders: the {dogs, loading, error} triple plus bookkeeping.
type SearchState struct {
	Seq     uint64       `json:"seq"`
	Status  SearchStatus `json:"status"`
	Dogs    []Dog        `json:"dogs"`
	Total   int          `json:"total"`
	Next    string       `json:"next,omitempty"`
	Prev    string       `json:"prev,omitempty"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	// Stale is set on the value returned to a superseded invocation.
	Stale bool `json:"stale,omitempty"`
}

// SearchEvent is published when a search reaches a terminal state.
type SearchEvent struct {
	ID         string       `json:"id"`
	Session    string       `json:"session"`
	Seq        uint64       `json:"seq"`
	Status     SearchStatus `json:"status"`
	Breeds     []string     `json:"breeds,omitempty"`
	Total      int          `json:"total"`
	Dogs       int          `json:"dogs"`
	Error      string       `json:"error,omitempty"`
	DurationMs int64        `json:"duration_ms"`
	Time       time.Time    `json:"time"`
}
