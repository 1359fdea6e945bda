//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// Package query asks the terminal about its state by writing escape
// sequences and parsing the replies.
//
// A terminal that does not answer, answers with garbage, or is missing
// altogether is not an error: queries return sentinel values (NoPosition,
// NoSize, NoColor) instead. Errors are reserved for failures to change or
// restore the terminal mode.
package query

import (
	"os"
	"time"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"

	"github.com/ttyq/ttyq/src/rawterm"
	"github.com/ttyq/ttyq/src/tty"
)

// DefaultTimeout bounds the wait for each byte of a reply
const DefaultTimeout = 3 * time.Second

// Config controls how a Client talks to the terminal.
type Config struct {
	// Device is the terminal device to open
	Device string
	// Timeout is the longest silence tolerated while reading a reply. It
	// is applied with decisecond granularity and saturates at 25.5s.
	Timeout time.Duration
	// When selects when the cbreak mode is applied and lifted
	When rawterm.When
	// Term is the terminal type, used to decide whether color queries
	// are worth sending
	Term string
}

// DefaultConfig returns the configuration used by the package-level
// functions.
func DefaultConfig() Config {
	return Config{
		Device:  tty.DefaultDevice,
		Timeout: DefaultTimeout,
		When:    rawterm.Flush,
		Term:    os.Getenv("TERM")}
}

// Client runs queries against one terminal device.
type Client struct {
	config Config
}

// New returns a Client. Empty Device and zero Timeout are replaced by
// their defaults. So is a negative Timeout, which would otherwise make
// every read return at once.
func New(config Config) *Client {
	if len(config.Device) == 0 {
		config.Device = tty.DefaultDevice
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{config: config}
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.config
}

// Session is a terminal held in cbreak mode for one or more exchanges.
type Session struct {
	tty *tty.Terminal
}

// Write sends seq to the terminal without waiting for a reply.
func (s *Session) Write(seq string) error {
	if _, err := s.tty.WriteString(seq); err != nil {
		return errors.Wrap(err, "write "+s.tty.Name())
	}
	return errors.Wrap(s.tty.Flush(), "flush "+s.tty.Name())
}

// Exchange writes request and reads the reply up to terminator. The reply
// is empty if the write failed or the terminal stayed silent.
func (s *Session) Exchange(request string, terminator string) []byte {
	if err := s.Write(request); err != nil {
		astilog.Debugf("query: %v", err)
		return nil
	}
	reply := ReadUntil(s.tty, []byte(terminator))
	astilog.Debugf("query: sent %q, received %q", request, reply)
	return reply
}

// Session opens the terminal, switches it to cbreak mode with the
// configured timeout and calls fn. The previous mode is restored and the
// terminal closed before Session returns. If no terminal can be opened,
// fn is not called and the error is nil.
func (c *Client) Session(fn func(*Session) error) error {
	t := tty.Open(c.config.Device)
	if t == nil {
		return nil
	}
	defer t.Close()

	vtime := rawterm.Deciseconds(c.config.Timeout)
	return rawterm.With(t.Fd(), rawterm.Cbreak, c.config.When, 0, vtime, func() error {
		return fn(&Session{tty: t})
	})
}

// Query performs a single exchange and parses the reply. It returns
// sentinel when there is no terminal or the reply does not parse. The
// error is non-nil only when the terminal mode could not be set or
// restored.
func Query[T any](c *Client, request string, terminator string, parse func([]byte) (T, bool), sentinel T) (T, error) {
	result := sentinel
	err := c.Session(func(s *Session) error {
		reply := s.Exchange(request, terminator)
		if len(reply) == 0 {
			return nil
		}
		if value, ok := parse(reply); ok {
			result = value
		}
		return nil
	})
	return result, err
}
