// Package graygelf sends log messages to Graylog in the GELF format over UDP.
//
// A Client builds a GELF document for every log call and returns it
// immediately. Encoding, compression, chunking and sending happen on a pool of
// workers; failures are reported to handlers registered with OnError.
package graygelf

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/GiG/graygelf/codec"
	"github.com/GiG/graygelf/gelf"
	"github.com/GiG/graygelf/xio"
	"github.com/GiG/graygelf/xnet"
)

var (
	// ErrClosed is reported for messages logged after Close.
	ErrClosed = errors.New("client is closed")
	// ErrQueueFull is reported for messages dropped because too many
	// messages are waiting to be sent.
	ErrQueueFull = errors.New("message queue is full")
)

type releaser interface {
	Release() error
}

// Client sends GELF messages to a single Graylog input.
type Client struct {
	config  Config
	builder *gelf.Builder
	encoder *codec.Encoder
	metrics clientMetrics

	fields    *gelf.FieldStore
	registry  metrics.Registry
	random    io.Reader
	now       func() time.Time
	transport io.Writer
	writer    io.Writer

	handlersMutex   sync.RWMutex
	errorHandlers   []func(error)
	messageHandlers []func(gelf.Document)

	queue      chan gelf.Document
	closing    chan struct{}
	closeOnce  sync.Once
	workers    sync.WaitGroup
	closeMutex sync.RWMutex
	closed     bool
}

// New creates a client and starts its workers. Close must be called to stop
// them and release the socket.
func New(config Config, options ...Option) (*Client, error) {
	config, compression, err := config.resolve()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := &Client{
		config:   config,
		registry: metrics.DefaultRegistry,
		now:      time.Now,
	}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, errors.Wrap(err, "invalid config option")
		}
	}

	if c.fields == nil {
		c.fields = gelf.NewFieldStore(nil)
	}
	if config.Facility != "" && !hasField(c.fields, "facility") {
		c.fields.Set("facility", config.Facility)
	}
	c.metrics = newClientMetrics(c.registry)

	c.builder = gelf.NewBuilder(config.Source, c.fields)
	c.builder.Now = c.now
	c.builder.Notify = c.notifyMessage

	c.encoder = codec.NewEncoder(config.ChunkSize, compression, config.AlwaysCompress)
	if c.random != nil {
		c.encoder.Random = c.random
	}

	if c.transport == nil {
		if config.Mock {
			c.transport = io.Discard
		} else {
			c.transport = xnet.NewUDPSender(config.Host, config.Port)
		}
	}
	decorators := []xio.WriterDecorator{xio.SizeLimit(config.MaxDatagramSize)}
	if config.RateLimit > 0 {
		decorators = append(decorators, xio.RateLimit(config.RateLimit))
	}
	decorators = append(decorators, xio.Timed(c.metrics.writeTimer))
	c.writer = xio.DecorateWriter(c.transport, decorators...)

	logConfig(config)

	c.queue = make(chan gelf.Document, config.QueueDepth)
	c.closing = make(chan struct{})
	c.workers.Add(config.Concurrency)
	for i := 0; i < config.Concurrency; i++ {
		go c.work()
	}
	return c, nil
}

func logConfig(config Config) {
	log.Info("Initializing GELF client with following configuration:")
	log.Infof("Host            = %s", config.Host)
	log.Infof("Port            = %d", config.Port)
	log.Infof("ChunkSize       = %d", config.ChunkSize)
	log.Infof("CompressType    = %s", config.CompressType)
	log.Infof("AlwaysCompress  = %t", config.AlwaysCompress)
	log.Infof("Mock            = %t", config.Mock)
	log.Infof("Source          = %s", config.Source)
	log.Infof("Facility        = %s", config.Facility)
	log.Infof("Concurrency     = %d", config.Concurrency)
	log.Infof("QueueDepth      = %d", config.QueueDepth)
	log.Infof("DropIfQueueFull = %t", config.DropIfQueueFull)
	log.Infof("RateLimit       = %d", config.RateLimit)
	log.Infof("MaxDatagramSize = %d", config.MaxDatagramSize)
}

func hasField(store *gelf.FieldStore, name string) bool {
	snapshot := store.Snapshot()
	_, plain := snapshot[name]
	_, prefixed := snapshot["_"+name]
	return plain || prefixed
}

// Fields returns the store of fields merged into every message.
func (c *Client) Fields() *gelf.FieldStore {
	return c.fields
}

// OnError registers a handler called with every asynchronous failure:
// encoding and transport errors, dropped and rejected messages. Handlers may
// be called concurrently from worker goroutines. A handler must not log
// through the same client: every message rejected after Close would call it
// again.
func (c *Client) OnError(handler func(error)) {
	c.handlersMutex.Lock()
	defer c.handlersMutex.Unlock()
	c.errorHandlers = append(c.errorHandlers, handler)
}

// OnMessage registers a handler called with every built document, on the
// goroutine of the log call.
func (c *Client) OnMessage(handler func(gelf.Document)) {
	c.handlersMutex.Lock()
	defer c.handlersMutex.Unlock()
	c.messageHandlers = append(c.messageHandlers, handler)
}

func (c *Client) notifyMessage(doc gelf.Document) {
	c.metrics.built.Inc(1)
	c.handlersMutex.RLock()
	handlers := c.messageHandlers
	c.handlersMutex.RUnlock()
	for _, handler := range handlers {
		handler(doc)
	}
}

func (c *Client) reportError(err error) {
	log.WithError(err).Debug("GELF message not sent")
	c.handlersMutex.RLock()
	handlers := c.errorHandlers
	c.handlersMutex.RUnlock()
	for _, handler := range handlers {
		handler(err)
	}
}

// Log sends message at level. The message may be text or an error; see
// gelf.Builder.Build. Fields are merged in order, later ones winning.
func (c *Client) Log(level gelf.Level, message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.LogFull(level, message, nil, fields...)
}

// LogFull sends message at level with an explicit full message. A map full
// message is rendered as JSON and its "_" keys are promoted to fields.
func (c *Client) LogFull(level gelf.Level, message, full interface{}, fields ...gelf.Fields) gelf.Document {
	doc := c.builder.Build(level, message, full, mergeFields(fields))
	c.enqueue(doc)
	return doc
}

// Structured sends a message from separate short and full texts. An empty
// full text is left out.
func (c *Client) Structured(level gelf.Level, short, full string, fields gelf.Fields) gelf.Document {
	doc := c.builder.Structured(level, short, full, fields)
	c.enqueue(doc)
	return doc
}

// Raw sends a caller-authored document. Only missing version, host and
// timestamp are filled in.
func (c *Client) Raw(doc gelf.Document) gelf.Document {
	raw := c.builder.Raw(doc)
	c.enqueue(raw)
	return raw
}

// Emerg sends message at the emergency level.
func (c *Client) Emerg(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Emerg, message, fields...)
}

// Alert sends message at the alert level.
func (c *Client) Alert(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Alert, message, fields...)
}

// Crit sends message at the critical level.
func (c *Client) Crit(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Crit, message, fields...)
}

// Error sends message at the error level.
func (c *Client) Error(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Error, message, fields...)
}

// Err is an alias of Error.
func (c *Client) Err(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Error, message, fields...)
}

// Warn sends message at the warning level.
func (c *Client) Warn(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Warn, message, fields...)
}

// Warning is an alias of Warn.
func (c *Client) Warning(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Warn, message, fields...)
}

// Notice sends message at the notice level.
func (c *Client) Notice(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Notice, message, fields...)
}

// Info sends message at the informational level.
func (c *Client) Info(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Info, message, fields...)
}

// Debug sends message at the debug level.
func (c *Client) Debug(message interface{}, fields ...gelf.Fields) gelf.Document {
	return c.Log(gelf.Debug, message, fields...)
}

func mergeFields(fields []gelf.Fields) gelf.Fields {
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return fields[0]
	}
	merged := gelf.Fields{}
	for _, layer := range fields {
		for key, value := range layer {
			merged[key] = value
		}
	}
	return merged
}

func (c *Client) enqueue(doc gelf.Document) {
	if err := c.tryEnqueue(doc); err != nil {
		c.reportError(err)
	}
}

func (c *Client) tryEnqueue(doc gelf.Document) error {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()

	if c.closed {
		return ErrClosed
	}
	if !c.config.DropIfQueueFull {
		select {
		case c.queue <- doc:
			return nil
		case <-c.closing:
			return ErrClosed
		}
	}
	select {
	case c.queue <- doc:
		return nil
	default:
		c.metrics.droppedQueueFull.Inc(1)
		return ErrQueueFull
	}
}

func (c *Client) work() {
	defer c.workers.Done()
	for doc := range c.queue {
		c.send(doc)
	}
}

// send encodes doc and writes every datagram. A failed write does not stop
// the following ones.
func (c *Client) send(doc gelf.Document) {
	datagrams, err := c.encoder.Encode(doc)
	if err != nil {
		c.metrics.encodeErrors.Inc(1)
		c.reportError(errors.Wrap(err, "unable to encode message"))
		return
	}
	if len(datagrams) > 1 {
		c.metrics.chunked.Inc(int64(len(datagrams)))
	}
	for _, datagram := range datagrams {
		log.WithField("size", len(datagram)).Debug("Sending GELF datagram")
		if _, err := c.writer.Write(datagram); err != nil {
			c.metrics.countWriteError(err)
			c.reportError(errors.Wrap(err, "unable to send datagram"))
			continue
		}
		c.metrics.sent.Inc(1)
	}
}

// Close stops accepting messages, waits until queued ones are sent and
// releases the transport. Log calls blocked on a full queue return and report
// ErrClosed. If ctx is done first, the remaining messages are sent in the
// background and ctx.Err() is returned without releasing the transport.
// Calling Close again is a no-op.
func (c *Client) Close(ctx context.Context) error {
	c.closeOnce.Do(func() { close(c.closing) })
	c.closeMutex.Lock()
	if c.closed {
		c.closeMutex.Unlock()
		return nil
	}
	c.closed = true
	close(c.queue)
	c.closeMutex.Unlock()

	done := make(chan struct{})
	go func() {
		c.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "unable to send queued messages")
	}

	if r, ok := c.transport.(releaser); ok {
		if err := r.Release(); err != nil {
			return errors.Wrap(err, "unable to release transport")
		}
	}
	return nil
}
