package gelf

import "time"

// Version is the GELF protocol version written into every document.
const Version = "1.1"

// Standard GELF keys.
const (
	KeyVersion      = "version"
	KeyHost         = "host"
	KeyShortMessage = "short_message"
	KeyFullMessage  = "full_message"
	KeyTimestamp    = "timestamp"
	KeyLevel        = "level"
)

// Document is a single GELF message in flat key-value form. Additional fields
// are stored under their "_"-prefixed keys next to the standard ones.
//
// A Document returned by the Builder must be treated as read-only; use Copy to
// derive a modified one.
type Document map[string]interface{}

// Copy returns a shallow copy of the document.
func (d Document) Copy() Document {
	c := make(Document, len(d))
	for key, value := range d {
		c[key] = value
	}
	return c
}

// ShortMessage returns the short_message value or an empty string.
func (d Document) ShortMessage() string {
	s, _ := d[KeyShortMessage].(string)
	return s
}

// FullMessage returns the full_message value and whether it is present.
func (d Document) FullMessage() (string, bool) {
	s, ok := d[KeyFullMessage].(string)
	return s, ok
}

// Host returns the host value or an empty string.
func (d Document) Host() string {
	s, _ := d[KeyHost].(string)
	return s
}

// Level returns the level value. Documents decoded from JSON carry float64
// levels, so both representations are accepted.
func (d Document) Level() (Level, bool) {
	switch v := d[KeyLevel].(type) {
	case Level:
		return v, true
	case int:
		return Level(v), true
	case float64:
		return Level(v), true
	}
	return 0, false
}

// Time returns the timestamp as time.Time, or the zero time when missing.
// The timestamp is a float64 number of seconds, so precision below about a
// microsecond is lost.
func (d Document) Time() time.Time {
	ts, ok := d[KeyTimestamp].(float64)
	if !ok {
		return time.Time{}
	}
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Timestamp converts t to GELF seconds since epoch with sub-second precision.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
