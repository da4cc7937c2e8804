package scraper

import (
	"bytes"

	"github.com/go-logfmt/logfmt"
	"github.com/pkg/errors"
)

// LogFmt is a scraper for logs in logfmt format.
//
// See: https://brandur.org/logfmt
type LogFmt struct {
	KeyFilter Filter
}

// Scrape parses one logfmt record. Keys without value are stored as empty
// strings.
func (logFmt *LogFmt) Scrape(line []byte) (Entry, error) {
	decoder := logfmt.NewDecoder(bytes.NewReader(line))
	entry := Entry{}

	if !decoder.ScanRecord() {
		if err := decoder.Err(); err != nil {
			return nil, errors.Wrap(err, "invalid logfmt record")
		}
		return entry, nil
	}
	for decoder.ScanKeyval() {
		key := decoder.Key()
		if logFmt.KeyFilter != nil && logFmt.KeyFilter.Match(key) {
			continue
		}
		entry[string(key)] = string(decoder.Value())
	}
	if err := decoder.Err(); err != nil {
		return nil, errors.Wrap(err, "invalid logfmt record")
	}
	return entry, nil
}
