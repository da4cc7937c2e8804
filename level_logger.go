package graygelf

import (
	"github.com/pkg/errors"

	"github.com/GiG/graygelf/gelf"
)

// LevelLogger sends messages at a fixed level.
type LevelLogger struct {
	client *Client
	level  gelf.Level
}

// At returns a logger bound to level.
func (c *Client) At(level gelf.Level) LevelLogger {
	return LevelLogger{client: c, level: level}
}

// Named returns a logger bound to the level with the given syslog name, such
// as "warning" or "err". An unknown name is an error.
func (c *Client) Named(name string) (LevelLogger, error) {
	level, err := gelf.ParseLevel(name)
	if err != nil {
		return LevelLogger{}, errors.Wrap(err, "invalid level")
	}
	return c.At(level), nil
}

// Level returns the level messages are sent at.
func (l LevelLogger) Level() gelf.Level {
	return l.level
}

// Log sends message; see Client.Log.
func (l LevelLogger) Log(message interface{}, fields ...gelf.Fields) gelf.Document {
	return l.client.Log(l.level, message, fields...)
}

// LogFull sends message with an explicit full message; see Client.LogFull.
func (l LevelLogger) LogFull(message, full interface{}, fields ...gelf.Fields) gelf.Document {
	return l.client.LogFull(l.level, message, full, fields...)
}

// Structured sends a message from separate short and full texts.
func (l LevelLogger) Structured(short, full string, fields gelf.Fields) gelf.Document {
	return l.client.Structured(l.level, short, full, fields)
}
