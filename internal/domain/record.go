// Package domain contains the core data types for the tour log.
// This package has no dependencies outside the standard library and
// google/uuid, and is imported by every other internal package.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical calendar-day format of TourRecord.Date.
const DateLayout = "2006-01-02"

// TourRecord is one logged tour session.
// Records are immutable after creation; only whole-record deletion exists.
type TourRecord struct {
	ID       string   `json:"id" validate:"required"`
	Date     string   `json:"date" validate:"tourdate"`
	Type     TourType `json:"type" validate:"tourtype"`
	Guide    string   `json:"guide" validate:"required"`
	Revenue  int64    `json:"revenue" validate:"gte=0"`
	Guests   int      `json:"guests" validate:"gte=1"`
	Duration float64  `json:"duration" validate:"gt=0"`
	Notes    string   `json:"notes,omitempty"`

	// CreatedAt is used for tie-breaking and audit only, never for aggregation.
	CreatedAt time.Time `json:"created_at"`
}

// NewID returns a fresh opaque record id.
func NewID() string {
	return uuid.NewString()
}

// Day returns the record's calendar day and whether Date parsed.
// Records whose Date does not parse must be excluded from aggregation.
func (r TourRecord) Day() (time.Time, bool) {
	d, err := ParseDate(r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// YearMonth returns the canonical "YYYY-MM" key of the record's date.
func (r TourRecord) YearMonth() (string, bool) {
	d, ok := r.Day()
	if !ok {
		return "", false
	}
	return d.Format("2006-01"), true
}

// DefaultLocation is the business timezone that RFC 3339 instants are
// read in when no other location is configured. Japan has no DST.
var DefaultLocation = time.FixedZone("JST", 9*60*60)

// ParseDate parses a calendar day in DefaultLocation. See ParseDateIn.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, DefaultLocation)
}

// ParseDateIn parses a calendar day. It accepts "YYYY-MM-DD" and RFC 3339
// timestamps; a timestamp is converted to loc before its day is taken, so
// "2025-08-31T15:00:00Z" is 2025-09-01 in Asia/Tokyo. A nil loc means
// DefaultLocation. The result is midnight UTC of that day.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if loc == nil {
		loc = DefaultLocation
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// NormalizeDate rewrites an accepted date string to "YYYY-MM-DD".
func NormalizeDate(s string) (string, error) {
	return NormalizeDateIn(s, DefaultLocation)
}

// NormalizeDateIn is NormalizeDate with timestamps read in loc.
func NormalizeDateIn(s string, loc *time.Location) (string, error) {
	t, err := ParseDateIn(s, loc)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}
