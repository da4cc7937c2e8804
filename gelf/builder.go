package gelf

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// emptyMessage replaces an empty short message, which Graylog rejects.
const emptyMessage = "<empty>"

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Builder turns log calls into GELF documents.
type Builder struct {
	// Host is written to every built document.
	Host string
	// Fields holds defaults merged into every built document. May be nil.
	Fields *FieldStore
	// Notify, if set, is called with every document after it is built.
	Notify func(Document)
	// Now returns the time used for document timestamps.
	Now func() time.Time
}

// NewBuilder returns a builder for the given host and default fields.
func NewBuilder(host string, fields *FieldStore) *Builder {
	return &Builder{
		Host:   host,
		Fields: fields,
		Now:    time.Now,
	}
}

// Build creates a document from a log call. The message may be text (string,
// []byte or fmt.Stringer) or an error. For errors the short message is the
// error text and the full message is its stack trace, when the error carries
// one. A non-nil full overrides that: strings are used as is, maps are
// rendered as JSON and their "_"-prefixed keys are promoted to additional
// fields. Explicit fields take precedence over promoted and default ones.
func (b *Builder) Build(level Level, message interface{}, full interface{}, fields Fields) Document {
	short, stack := textOf(message)

	var fullText string
	var promoted Fields
	hasFull := false
	if full != nil {
		fullText, promoted = b.fullMessage(full)
		hasFull = true
	} else if stack != "" {
		fullText, hasFull = stack, true
	}

	return b.build(level, short, fullText, hasFull, promoted, fields)
}

// Structured creates a document from already separated parts, skipping any
// inspection of the message type. An empty full message is left out.
func (b *Builder) Structured(level Level, short, full string, fields Fields) Document {
	return b.build(level, short, full, full != "", fields)
}

// Raw completes a caller-authored document. Only missing version, host and
// timestamp are filled in; every other key, including reserved ones, is kept
// verbatim.
func (b *Builder) Raw(doc Document) Document {
	raw := doc.Copy()
	if _, ok := raw[KeyVersion]; !ok {
		raw[KeyVersion] = Version
	}
	if _, ok := raw[KeyHost]; !ok {
		raw[KeyHost] = b.Host
	}
	if _, ok := raw[KeyTimestamp]; !ok {
		raw[KeyTimestamp] = Timestamp(b.now())
	}
	b.notify(raw)
	return raw
}

func (b *Builder) build(level Level, short, full string, hasFull bool, layers ...Fields) Document {
	if short == "" {
		short = emptyMessage
	}

	store := b.Fields
	if store == nil {
		store = &FieldStore{}
	}
	extra := store.Extend(layers...)

	doc := make(Document, len(extra)+6)
	for key, value := range extra {
		doc[key] = value
	}
	doc[KeyVersion] = Version
	doc[KeyHost] = b.Host
	doc[KeyShortMessage] = short
	doc[KeyTimestamp] = Timestamp(b.now())
	doc[KeyLevel] = int(clamp(level))
	if hasFull {
		doc[KeyFullMessage] = full
	}

	b.notify(doc)
	return doc
}

func (b *Builder) fullMessage(full interface{}) (string, Fields) {
	switch v := full.(type) {
	case map[string]interface{}:
		return b.renderObject(v), promote(v)
	case Fields:
		return b.renderObject(v), promote(v)
	case error:
		return fmt.Sprintf("%+v", v), nil
	}
	text, _ := textOf(full)
	return text, nil
}

func (b *Builder) renderObject(object map[string]interface{}) string {
	rendered, err := json.Marshal(object)
	if err != nil {
		return fmt.Sprint(object)
	}
	return string(rendered)
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *Builder) notify(doc Document) {
	if b.Notify != nil {
		b.Notify(doc)
	}
}

// textOf returns the text of a message value and, for errors with a stack
// trace, the verbose form including the trace.
func textOf(message interface{}) (text string, stack string) {
	switch v := message.(type) {
	case nil:
		return "", ""
	case string:
		return v, ""
	case []byte:
		return string(v), ""
	case error:
		if _, ok := v.(stackTracer); ok {
			stack = fmt.Sprintf("%+v", v)
		}
		return v.Error(), stack
	case fmt.Stringer:
		return v.String(), ""
	}
	return fmt.Sprint(message), ""
}

func promote(object map[string]interface{}) Fields {
	promoted := Fields{}
	for key, value := range object {
		if len(key) > 1 && key[0] == '_' {
			promoted[key] = value
		}
	}
	return promoted
}

func clamp(level Level) Level {
	if level < Emerg {
		return Emerg
	}
	if level > Debug {
		return Debug
	}
	return level
}
