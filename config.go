package graygelf

import (
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"

	"github.com/GiG/graygelf/codec"
	"github.com/GiG/graygelf/gelf"
	"github.com/GiG/graygelf/runenv"
)

const (
	environmentPrefix = "graygelf"

	defaultHost            = "localhost"
	defaultPort            = 12201
	defaultFacility        = "GELF"
	defaultQueueDepth      = 1024
	defaultMaxDatagramSize = 65507
)

// Config contains client configuration. Zero values of numeric fields are
// replaced with defaults by New.
type Config struct {
	// Graylog host name or IP address
	Host string `default:"localhost"`
	// Graylog GELF UDP input port
	Port int `default:"12201"`
	// Largest payload sent unchunked and the size of every chunk
	ChunkSize int `default:"1240" split_words:"true"`
	// Compression used for large messages: deflate or gzip
	CompressType string `default:"deflate" split_words:"true"`
	// Compress even messages that fit into a single datagram
	AlwaysCompress bool `default:"false" split_words:"true"`
	// Encode messages but never open a socket
	Mock bool `default:"false"`

	// Host reported in messages, defaults to the system host name
	Source string
	// Sent as the _facility field when not empty
	Facility string `default:"GELF"`

	// Number of goroutines encoding and sending messages
	Concurrency int `default:"1"`
	// Number of messages waiting to be sent
	QueueDepth int `default:"1024" split_words:"true"`
	// Drop messages instead of blocking the caller when the queue is full
	DropIfQueueFull bool `default:"true" split_words:"true"`
	// Datagrams per second, 0 means no limit
	RateLimit int `split_words:"true"`
	// Datagrams larger than this are not sent
	MaxDatagramSize int `default:"65507" split_words:"true"`
}

// DefaultConfig returns configuration sending to localhost:12201.
func DefaultConfig() Config {
	return Config{
		Host:            defaultHost,
		Port:            defaultPort,
		ChunkSize:       codec.WAN,
		CompressType:    string(codec.Deflate),
		Facility:        defaultFacility,
		Concurrency:     1,
		QueueDepth:      defaultQueueDepth,
		DropIfQueueFull: true,
		MaxDatagramSize: defaultMaxDatagramSize,
	}
}

// ConfigFromEnv reads configuration from GRAYGELF_* environment variables.
func ConfigFromEnv() (Config, error) {
	var config Config
	if err := envconfig.Process(environmentPrefix, &config); err != nil {
		return Config{}, errors.Wrap(err, "unable to get config from env")
	}
	return config, nil
}

// resolve replaces invalid values with defaults. Only an unknown compression
// is reported as an error.
func (c Config) resolve() (Config, codec.Compression, error) {
	compression, err := codec.ParseCompression(c.CompressType)
	if err != nil {
		return c, "", err
	}
	c.CompressType = string(compression)

	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaultPort
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = codec.WAN
	}
	if c.Source == "" {
		c.Source = runenv.HostnameOr(defaultHost)
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.QueueDepth < 1 {
		c.QueueDepth = defaultQueueDepth
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.MaxDatagramSize <= 0 {
		c.MaxDatagramSize = defaultMaxDatagramSize
	}
	return c, compression, nil
}

// Option customises collaborators of the Client.
type Option func(*Client) error

// WithTransport makes the client write datagrams to writer instead of a UDP
// socket. If writer has a Release() error method it is called on Close.
func WithTransport(writer io.Writer) Option {
	return func(c *Client) error {
		if writer == nil {
			return errors.New("transport must not be nil")
		}
		c.transport = writer
		return nil
	}
}

// WithRegistry registers client metrics in registry instead of
// metrics.DefaultRegistry.
func WithRegistry(registry metrics.Registry) Option {
	return func(c *Client) error {
		if registry == nil {
			return errors.New("registry must not be nil")
		}
		c.registry = registry
		return nil
	}
}

// WithFieldStore makes the client merge fields from store into every
// message. The store may be shared between clients.
func WithFieldStore(store *gelf.FieldStore) Option {
	return func(c *Client) error {
		if store == nil {
			return errors.New("field store must not be nil")
		}
		c.fields = store
		return nil
	}
}

// WithRandom sets the source of chunk message ids.
func WithRandom(random io.Reader) Option {
	return func(c *Client) error {
		if random == nil {
			return errors.New("random source must not be nil")
		}
		c.random = random
		return nil
	}
}

// WithClock sets the function returning message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		c.now = now
		return nil
	}
}
