package scraper

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfReturnsScraperForFormat(t *testing.T) {
	testCases := []struct {
		name     string
		expected Scraper
	}{
		{"", Plain{}},
		{"plain", Plain{}},
		{"LogFmt", &LogFmt{}},
		{" json ", &JSON{}},
	}

	for _, tc := range testCases {
		t.Run("format="+tc.name, func(t *testing.T) {
			scraper, err := ForFormat(tc.name, nil)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, scraper)
		})
	}
}

func TestIfPassesKeyFilterToParsingScrapers(t *testing.T) {
	filter := NewValueFilter("password")

	logFmt, err := ForFormat("logfmt", filter)
	require.NoError(t, err)
	jsonScraper, err := ForFormat("json", filter)
	require.NoError(t, err)
	plain, err := ForFormat("plain", filter)
	require.NoError(t, err)

	assert.Equal(t, &LogFmt{KeyFilter: filter}, logFmt)
	assert.Equal(t, &JSON{KeyFilter: filter}, jsonScraper)
	assert.Equal(t, Plain{}, plain)
}

func TestIfFailsForUnknownFormat(t *testing.T) {
	_, err := ForFormat("xml", nil)

	assert.Equal(t, ErrUnknownFormat, errors.Cause(err))
}

func TestIfScrapsPlainLinesAsMessage(t *testing.T) {
	entry, err := Plain{}.Scrape([]byte("a=b not parsed"))

	require.NoError(t, err)
	assert.Equal(t, Entry{"short_message": "a=b not parsed"}, entry)
}

func TestIfExtractsMessageFromEntry(t *testing.T) {
	testCases := []struct {
		entry    Entry
		message  string
		leftover Entry
	}{
		{Entry{"msg": "a", "x": "1"}, "a", Entry{"x": "1"}},
		{Entry{"message": "b"}, "b", Entry{}},
		{Entry{"short_message": "c", "msg": "d"}, "c", Entry{}},
		{Entry{"msg": 1.0, "message": "e"}, "e", Entry{}},
		{Entry{"x": "1"}, "", Entry{"x": "1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.message, func(t *testing.T) {
			original := Entry{}
			for k, v := range tc.entry {
				original[k] = v
			}

			message, rest := tc.entry.Message()

			assert.Equal(t, tc.message, message)
			assert.Equal(t, tc.leftover, rest)
			assert.Equal(t, original, tc.entry)
		})
	}
}
