package scraper

import (
	"github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON is a scraper for logs represented as JSON objects.
type JSON struct {
	KeyFilter Filter
}

// Scrape unmarshals one JSON object. Nested values are kept as they are.
func (j *JSON) Scrape(line []byte) (Entry, error) {
	entry := Entry{}
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil, errors.Wrap(err, "invalid JSON log entry")
	}
	if j.KeyFilter != nil {
		for key := range entry {
			if j.KeyFilter.Match([]byte(key)) {
				delete(entry, key)
			}
		}
	}
	return entry, nil
}
