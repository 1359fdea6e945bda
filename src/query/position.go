//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package query

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/asticode/go-astilog"
)

const (
	cursorPositionRequest = "\x1b[6n"
	cornerRequest         = "\x1b[10000;10000f" + cursorPositionRequest
	positionTerminator    = "R"
)

var positionRegexp = regexp.MustCompile("\x1b\\[([0-9]+);([0-9]+)R$")

// Position is a 1-based cursor location.
type Position struct {
	Row int
	Col int
}

// NoPosition is returned when the position is unknown. It is not the
// origin, which is (1, 1).
var NoPosition = Position{0, 0}

// Valid tells whether p holds a reported position
func (p Position) Valid() bool {
	return p != NoPosition
}

func (p Position) String() string {
	return fmt.Sprintf("%d;%d", p.Row, p.Col)
}

// Size is the number of rows and columns of the terminal window.
type Size struct {
	Rows int
	Cols int
}

// NoSize is returned when the window size is unknown
var NoSize = Size{0, 0}

// Valid tells whether s holds a reported size
func (s Size) Valid() bool {
	return s != NoSize
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Cols, s.Rows)
}

// ParsePosition extracts a cursor position report (ESC [ row ; col R) from
// the end of reply. Anything before the report is ignored.
func ParsePosition(reply []byte) (Position, bool) {
	m := positionRegexp.FindSubmatch(reply)
	if m == nil {
		return NoPosition, false
	}
	row, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return NoPosition, false
	}
	col, err := strconv.Atoi(string(m[2]))
	if err != nil {
		return NoPosition, false
	}
	return Position{row, col}, true
}

// ReadPosition reads a cursor position report from r. It returns
// NoPosition if r does not yield one.
func ReadPosition(r io.Reader) Position {
	p, _ := ParsePosition(ReadUntil(r, []byte(positionTerminator)))
	return p
}

// CursorPosition asks for the current position of the cursor
func (s *Session) CursorPosition() Position {
	p, _ := ParsePosition(s.Exchange(cursorPositionRequest, positionTerminator))
	return p
}

// MoveTo moves the cursor to p
func (s *Session) MoveTo(p Position) error {
	return s.Write(fmt.Sprintf("\x1b[%d;%df", p.Row, p.Col))
}

// CursorPosition returns the position of the cursor, or NoPosition if the
// terminal does not support DSR 6.
func (c *Client) CursorPosition() (Position, error) {
	return Query(c, cursorPositionRequest, positionTerminator, ParsePosition, NoPosition)
}

// WindowSize returns the window dimensions found by moving the cursor past
// the bottom-right corner and asking where it ended up. The cursor is put
// back afterwards. Nothing is sent if the cursor position cannot be read
// in the first place.
func (c *Client) WindowSize() (Size, error) {
	size := NoSize
	err := c.Session(func(s *Session) error {
		saved := s.CursorPosition()
		if !saved.Valid() {
			return nil
		}
		if p, ok := ParsePosition(s.Exchange(cornerRequest, positionTerminator)); ok {
			size = Size{p.Row, p.Col}
		}
		// Restore even when the corner query got no answer
		if err := s.MoveTo(saved); err != nil {
			astilog.Debugf("query: cannot restore cursor to %v: %v", saved, err)
		}
		return nil
	})
	return size, err
}

// CursorPosition is Client.CursorPosition with the default configuration
func CursorPosition() (Position, error) {
	return New(DefaultConfig()).CursorPosition()
}

// WindowSize is Client.WindowSize with the default configuration
func WindowSize() (Size, error) {
	return New(DefaultConfig()).WindowSize()
}
