package graygelf

import (
	"bytes"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/GiG/graygelf/gelf"
	"github.com/GiG/graygelf/scraper"
)

// maxLineSize is the longest line kept in memory; longer input is sent in
// pieces of this size.
const maxLineSize = 64 * 1024

// levelKey is the parsed line key overriding the level of a LineWriter.
const levelKey = "level"

// LineWriter sends every line written to it as a separate message. Lines are
// parsed with a scraper; the message text is taken from the msg, message or
// short_message key and the other keys become fields. A parseable level key
// overrides the default level. It is safe for concurrent use.
type LineWriter struct {
	client  *Client
	level   gelf.Level
	scraper scraper.Scraper

	mutex  sync.Mutex
	buffer []byte
	closed bool
}

// Stream returns a writer sending lines at level. The format is plain, logfmt
// or json; an empty format means plain. Keys listed in dropKeys are removed
// from parsed logfmt and json lines before they become fields.
func (c *Client) Stream(level gelf.Level, format string, dropKeys ...string) (*LineWriter, error) {
	var filter scraper.Filter
	if len(dropKeys) > 0 {
		filter = scraper.NewValueFilter(dropKeys...)
	}
	s, err := scraper.ForFormat(format, filter)
	if err != nil {
		return nil, err
	}
	return &LineWriter{client: c, level: level, scraper: s}, nil
}

// Write buffers p and sends every complete line. Incomplete lines wait for
// more input or Close.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return 0, ErrClosed
	}
	w.buffer = append(w.buffer, p...)
	for {
		i := bytes.IndexByte(w.buffer, '\n')
		if i < 0 {
			break
		}
		w.sendPieces(w.buffer[:i])
		w.buffer = w.buffer[i+1:]
	}
	for len(w.buffer) > maxLineSize {
		n := pieceLen(w.buffer)
		w.send(w.buffer[:n])
		w.buffer = w.buffer[n:]
	}
	if len(w.buffer) == 0 {
		w.buffer = nil
	}
	return len(p), nil
}

// ReadFrom writes everything read from r until EOF.
func (w *LineWriter) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, errors.Wrap(err, "unable to read lines")
		}
	}
}

// Close sends the buffered incomplete line, if any. It does not close the
// client.
func (w *LineWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.buffer) > 0 {
		w.sendPieces(w.buffer)
		w.buffer = nil
	}
	return nil
}

func (w *LineWriter) sendPieces(line []byte) {
	for len(line) > maxLineSize {
		n := pieceLen(line)
		w.send(line[:n])
		line = line[n:]
	}
	w.send(line)
}

// pieceLen returns the length of the first piece of line, at most maxLineSize
// and not splitting a UTF-8 sequence.
func pieceLen(line []byte) int {
	if len(line) <= maxLineSize {
		return len(line)
	}
	for i := maxLineSize; i > maxLineSize-utf8.UTFMax; i-- {
		if utf8.RuneStart(line[i]) {
			return i
		}
	}
	return maxLineSize
}

func (w *LineWriter) send(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}

	entry, err := w.scraper.Scrape(line)
	if err != nil {
		log.WithError(err).Debug("Unable to parse line - sending it as plain text")
		entry, _ = scraper.Plain{}.Scrape(line)
	}
	message, rest := entry.Message()
	if message == "" {
		message = string(line)
	}

	level := w.level
	if name, ok := rest[levelKey].(string); ok {
		if parsed, err := gelf.ParseLevel(name); err == nil {
			level = parsed
			delete(rest, levelKey)
		}
	}
	w.client.Log(level, message, gelf.Fields(rest))
}
