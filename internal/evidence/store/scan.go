package store

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// timeCol scans TIMESTAMPTZ (PostgreSQL) and RFC 3339 text (SQLite).
type timeCol struct {
	Time  time.Time
	Valid bool
}

func (t *timeCol) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = timeCol{}
		return nil
	case time.Time:
		*t = timeCol{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("scan time: unsupported type %T", src)
}

func (t *timeCol) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("scan time: %w", err)
	}
	*t = timeCol{Time: parsed.UTC(), Valid: true}
	return nil
}

func (t timeCol) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// dateCol scans DATE (PostgreSQL returns midnight UTC) and YYYY-MM-DD text.
type dateCol struct {
	Date civil.Date
}

func (d *dateCol) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = civil.DateOf(v.UTC())
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("scan date: unsupported type %T", src)
}

func (d *dateCol) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	d.Date = parsed
	return nil
}

// dateParam binds a civil.Date as ISO text, which both engines accept.
func dateParam(d civil.Date) driver.Value { return d.String() }
