package scraper

// Filter is an interface that performs filtering tasks during log scraping. It
// allows to ignore keys based on implementation logic.
type Filter interface {
	Match([]byte) bool
}

// ValueFilter ignores a fixed set of keys during log scraping.
type ValueFilter map[string]struct{}

// NewValueFilter returns a filter matching any of the passed keys.
func NewValueFilter(keys ...string) ValueFilter {
	filter := ValueFilter{}
	for _, key := range keys {
		filter[key] = struct{}{}
	}
	return filter
}

// Match returns true if passed value is on the filtered list - false otherwise.
func (f ValueFilter) Match(v []byte) bool {
	_, ok := f[string(v)]
	return ok
}
