// Package scraper parses single log lines into flat key-value entries.
package scraper

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned when no scraper is registered for a format name.
var ErrUnknownFormat = errors.New("unknown line format")

// Entry represents one scraped log line in flat key-value store.
type Entry map[string]interface{}

// MessageKeys are the entry keys that hold the log message, in lookup order.
var MessageKeys = []string{"short_message", "message", "msg"}

// Message returns the log message of the entry and the remaining keys. The
// first non-empty key from MessageKeys is used as the message; all message
// keys are removed from the returned entry. Original entry is not modified.
func (e Entry) Message() (string, Entry) {
	rest := Entry{}
	for key, value := range e {
		rest[key] = value
	}
	var message string
	for _, key := range MessageKeys {
		value, ok := rest[key]
		if !ok {
			continue
		}
		delete(rest, key)
		if s, ok := value.(string); ok && message == "" {
			message = s
		}
	}
	return message, rest
}

// Scraper is an interface for various scrapers that support different log
// formats. Scrape must not retain line.
type Scraper interface {
	Scrape(line []byte) (Entry, error)
}

// Format names a line format.
type Format string

// Supported line formats.
const (
	FormatPlain  Format = "plain"
	FormatLogFmt Format = "logfmt"
	FormatJSON   Format = "json"
)

// ForFormat returns the scraper for the format name. Empty name means plain
// text. Keys matching keyFilter are skipped by the logfmt and json scrapers; a
// nil filter keeps every key.
func ForFormat(name string, keyFilter Filter) (Scraper, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatPlain, "":
		return Plain{}, nil
	case FormatLogFmt:
		return &LogFmt{KeyFilter: keyFilter}, nil
	case FormatJSON:
		return &JSON{KeyFilter: keyFilter}, nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// Plain is a scraper that treats the whole line as the message.
type Plain struct{}

// Scrape returns an entry holding the line as its message.
func (Plain) Scrape(line []byte) (Entry, error) {
	return Entry{MessageKeys[0]: string(line)}, nil
}
