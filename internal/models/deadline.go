package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Deadline is a point in time that accepts several client input shapes:
// an RFC3339 string, a bare "2006-01-02" date, a unix epoch number
// (seconds or milliseconds), or a store-native {"seconds","nanoseconds"}
// wrapper. All shapes normalize to the same instant; it marshals back as
// RFC3339 in UTC.
type Deadline struct {
	time.Time
}

// NewDeadline wraps t as a Deadline.
func NewDeadline(t time.Time) Deadline {
	return Deadline{Time: t}
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDeadline parses a deadline from its string form.
func ParseDeadline(s string) (Deadline, error) {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Deadline{Time: t.UTC()}, nil
		}
	}
	return Deadline{}, fmt.Errorf("unrecognized deadline format: %q", s)
}

// timestampWrapper mirrors the document store's native timestamp shape.
type timestampWrapper struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
	Nanos       int64  `json:"nanos"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Deadline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseDeadline(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		// Heuristic: values past the year 33658 in seconds are milliseconds.
		if n > 1_000_000_000_000 {
			d.Time = time.UnixMilli(n).UTC()
		} else {
			d.Time = time.Unix(n, 0).UTC()
		}
		return nil
	}

	var w timestampWrapper
	if err := json.Unmarshal(data, &w); err == nil && w.Seconds != nil {
		nanos := w.Nanoseconds
		if nanos == 0 {
			nanos = w.Nanos
		}
		d.Time = time.Unix(*w.Seconds, nanos).UTC()
		return nil
	}

	return fmt.Errorf("unrecognized deadline value: %s", string(data))
}

// MarshalJSON implements json.Marshaler.
func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// Value implements driver.Valuer so gorm stores the underlying time.
func (d Deadline) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Deadline) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v.UTC()
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case int64:
		d.Time = time.Unix(v, 0).UTC()
		return nil
	}
	return fmt.Errorf("cannot scan %T into Deadline", value)
}

func (d *Deadline) scanString(s string) error {
	layouts := append([]string{"2006-01-02 15:04:05.999999999-07:00"}, deadlineLayouts...)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into Deadline", s)
}
