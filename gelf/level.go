package gelf

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownLevel is returned when a severity name is not one of the syslog
// level names.
var ErrUnknownLevel = errors.New("unknown log level")

// Level is a syslog severity. Lower values are more severe.
type Level int

const (
	// Emerg means the system is unusable.
	Emerg Level = iota
	// Alert means action must be taken immediately.
	Alert
	// Crit means critical conditions.
	Crit
	// Error means error conditions.
	Error
	// Warn means warning conditions.
	Warn
	// Notice means normal but significant conditions.
	Notice
	// Info means informational messages.
	Info
	// Debug means debug-level messages.
	Debug
)

// Levels maps every accepted severity name, including aliases, to its level.
var Levels = map[string]Level{
	"emerg":   Emerg,
	"alert":   Alert,
	"crit":    Crit,
	"error":   Error,
	"err":     Error,
	"warn":    Warn,
	"warning": Warn,
	"notice":  Notice,
	"info":    Info,
	"debug":   Debug,
}

var levelNames = [...]string{"emerg", "alert", "crit", "error", "warn", "notice", "info", "debug"}

// ParseLevel returns the level for the given severity name. Names are matched
// case-insensitively.
func ParseLevel(name string) (Level, error) {
	level, ok := Levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownLevel, "%q", name)
	}
	return level, nil
}

// Valid reports whether l is one of the eight syslog levels.
func (l Level) Valid() bool {
	return l >= Emerg && l <= Debug
}

func (l Level) String() string {
	if !l.Valid() {
		return "unknown"
	}
	return levelNames[l]
}
