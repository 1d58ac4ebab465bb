package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the date-only form used by filters and form drafts.
const DateLayout = "2006-01-02"

// wireLayout is the layout for outgoing timestamps: UTC with millisecond precision.
const wireLayout = "2006-01-02T15:04:05.000Z07:00"

// parseLayouts are tried in order. The API may return naive datetimes, which
// are read as UTC.
var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	DateLayout,
}

// Timestamp wraps time.Time with the API's JSON encoding.
type Timestamp struct {
	time.Time
}

// NewTimestamp returns a Timestamp for t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses an RFC 3339 timestamp, a naive ISO datetime or a
// YYYY-MM-DD date.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// String formats the timestamp as it is sent on the wire.
func (t Timestamp) String() string {
	return t.UTC().Format(wireLayout)
}

// Date returns the calendar date as YYYY-MM-DD in the offset the timestamp
// was parsed with, so a server date is shown as the server wrote it.
func (t Timestamp) Date() string {
	return t.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
