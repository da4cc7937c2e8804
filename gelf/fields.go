package gelf

import (
	"regexp"
	"sync"
)

// Fields holds additional GELF fields. Keys may be given with or without the
// leading underscore.
type Fields map[string]interface{}

var fieldNameRegexp = regexp.MustCompile(`^[\w.\-]+$`)

// reserved additional field names that Graylog uses for itself
var reserved = map[string]bool{
	"_id": true,
}

// FieldKey returns the additional field key for name and whether it may be
// sent. Names get a "_" prefix when missing. Reserved and malformed names are
// rejected.
func FieldKey(name string) (string, bool) {
	key := name
	if len(key) == 0 || key[0] != '_' {
		key = "_" + key
	}
	if len(key) == 1 || reserved[key] || !fieldNameRegexp.MatchString(key[1:]) {
		return "", false
	}
	return key, true
}

// FieldStore holds default fields merged into every outgoing message. It is
// safe for concurrent use.
type FieldStore struct {
	mutex  sync.RWMutex
	fields Fields
}

// NewFieldStore creates a store with the given initial fields.
func NewFieldStore(initial Fields) *FieldStore {
	s := &FieldStore{fields: Fields{}}
	for key, value := range initial {
		s.fields[key] = value
	}
	return s
}

// Set stores value under name, replacing any previous value.
func (s *FieldStore) Set(name string, value interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.fields == nil {
		s.fields = Fields{}
	}
	s.fields[name] = value
}

// Delete removes name from the store.
func (s *FieldStore) Delete(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.fields, name)
}

// Snapshot returns a copy of the stored fields.
func (s *FieldStore) Snapshot() Fields {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	snapshot := make(Fields, len(s.fields))
	for key, value := range s.fields {
		snapshot[key] = value
	}
	return snapshot
}

// Extend returns the stored fields merged with the given layers. Later layers
// win on key collision; "a" and "_a" are treated as the same key.
func (s *FieldStore) Extend(layers ...Fields) Fields {
	merged := Fields{}
	for _, source := range append([]Fields{s.Snapshot()}, layers...) {
		for name, value := range source {
			key, ok := FieldKey(name)
			if !ok {
				continue
			}
			merged[key] = value
		}
	}
	return merged
}
