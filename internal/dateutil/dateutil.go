// Package dateutil converts the heterogeneous date shapes the clients and
// the store produce into a single day-granular CalendarDate.
package dateutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when an input cannot be normalized.
// Callers should hide the offending record rather than fail the whole view.
var ErrInvalidDate = errors.New("invalid date")

// Timestamp is the seconds/nanos document shape used by store clients.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// CalendarDate is a calendar day with no time-of-day component.
// The zero value is invalid; obtain one through Normalize.
type CalendarDate struct {
	t time.Time
}

var weekdayNames = [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// stringLayouts are tried in order when normalizing a string input.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize converts a native time.Time, an ISO 8601 string, or a
// seconds/nanos timestamp document into a CalendarDate. Decoded JSON is
// accepted as-is, so a map with "seconds"/"nanos" keys also normalizes.
func Normalize(input any) (CalendarDate, error) {
	switch v := input.(type) {
	case CalendarDate:
		if v.IsZero() {
			return CalendarDate{}, ErrInvalidDate
		}
		return v, nil
	case time.Time:
		return fromTime(v)
	case *time.Time:
		if v == nil {
			return CalendarDate{}, ErrInvalidDate
		}
		return fromTime(*v)
	case Timestamp:
		return fromTime(time.Unix(v.Seconds, v.Nanos).UTC())
	case string:
		for _, layout := range stringLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return fromTime(t)
			}
		}
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	case map[string]any:
		// Timestamp document arriving through generic JSON decoding.
		sec, okSec := asInt64(v["seconds"])
		if !okSec {
			return CalendarDate{}, fmt.Errorf("%w: timestamp document missing seconds", ErrInvalidDate)
		}
		nanos, _ := asInt64(v["nanos"])
		return fromTime(time.Unix(sec, nanos).UTC())
	case nil:
		return CalendarDate{}, ErrInvalidDate
	default:
		return CalendarDate{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, input)
	}
}

func fromTime(t time.Time) (CalendarDate, error) {
	if t.IsZero() {
		return CalendarDate{}, ErrInvalidDate
	}
	t = t.UTC()
	return CalendarDate{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// IsZero reports whether d is the invalid zero value.
func (d CalendarDate) IsZero() bool { return d.t.IsZero() }

// Time returns the date as midnight UTC.
func (d CalendarDate) Time() time.Time { return d.t }

// Key returns the yyyy-mm-dd form used for occupancy keys.
func (d CalendarDate) Key() string { return d.t.Format("2006-01-02") }

// Format returns the Korean display form, e.g. "2025년 3월 1일".
func (d CalendarDate) Format() string { return d.t.Format("2006년 1월 2일") }

// Weekday returns the Korean weekday label for the date.
func (d CalendarDate) Weekday() string { return weekdayNames[int(d.t.Weekday())] }

// Before reports whether d is an earlier day than other.
func (d CalendarDate) Before(other CalendarDate) bool { return d.t.Before(other.t) }

// Equal reports whether two dates are the same calendar day.
func (d CalendarDate) Equal(other CalendarDate) bool { return d.t.Equal(other.t) }

// MarshalJSON encodes the date in its yyyy-mm-dd key form.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Key())
}

// UnmarshalJSON accepts any of the normalizable JSON shapes.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	normalized, err := Normalize(raw)
	if err != nil {
		return err
	}
	*d = normalized
	return nil
}
