//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package query

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/ttyq/ttyq/src/rawterm"
)

var moveRegexp = regexp.MustCompile("^\x1b\\[([0-9]+);([0-9]+)f")

// emulator answers queries from the master side of a pseudo-terminal.
type emulator struct {
	master *os.File
	slave  *os.File
	done   chan struct{}

	mu      sync.Mutex
	written []byte
	cursor  Position
	size    Size
	// Sent before every cursor report
	noise string
	// Cursor reports left to answer, negative for no limit
	reports int
	// OSC 10 and 11 reply bodies, empty for no reply
	fg string
	bg string
}

func newEmulator(t *testing.T, setup func(*emulator)) *emulator {
	t.Helper()
	master, slave, err := pty.Open()
	if err != nil {
		t.Skip("no pseudo-terminal:", err)
	}
	e := &emulator{
		master:  master,
		slave:   slave,
		done:    make(chan struct{}),
		cursor:  Position{1, 1},
		size:    Size{24, 80},
		reports: -1}
	if setup != nil {
		setup(e)
	}
	go e.serve()
	t.Cleanup(func() {
		master.Close()
		<-e.done
		slave.Close()
	})
	return e
}

func (e *emulator) client() *Client {
	return New(Config{Device: e.slave.Name(), Timeout: 300 * time.Millisecond, Term: "xterm"})
}

func (e *emulator) serve() {
	defer close(e.done)
	buf := make([]byte, 256)
	var pending []byte
	for {
		n, err := e.master.Read(buf)
		if err != nil {
			return
		}
		e.mu.Lock()
		e.written = append(e.written, buf[:n]...)
		pending = e.interpret(append(pending, buf[:n]...))
		e.mu.Unlock()
	}
}

func (e *emulator) interpret(pending []byte) []byte {
	for len(pending) > 0 {
		if bytes.HasPrefix(pending, []byte(cursorPositionRequest)) {
			pending = pending[len(cursorPositionRequest):]
			e.report()
		} else if bytes.HasPrefix(pending, []byte(foregroundRequest)) {
			pending = pending[len(foregroundRequest):]
			e.reply("10", e.fg)
		} else if bytes.HasPrefix(pending, []byte(backgroundRequest)) {
			pending = pending[len(backgroundRequest):]
			e.reply("11", e.bg)
		} else if m := moveRegexp.FindSubmatch(pending); m != nil {
			row, _ := strconv.Atoi(string(m[1]))
			col, _ := strconv.Atoi(string(m[2]))
			e.cursor = Position{min(max(row, 1), e.size.Rows), min(max(col, 1), e.size.Cols)}
			pending = pending[len(m[0]):]
		} else if pending[0] == '\x1b' && len(pending) < 16 {
			// Incomplete sequence
			return pending
		} else {
			pending = pending[1:]
		}
	}
	return pending
}

func (e *emulator) report() {
	if e.reports == 0 {
		return
	}
	if e.reports > 0 {
		e.reports--
	}
	fmt.Fprintf(e.master, "%s\x1b[%d;%dR", e.noise, e.cursor.Row, e.cursor.Col)
}

func (e *emulator) reply(code string, body string) {
	if len(body) > 0 {
		fmt.Fprintf(e.master, "\x1b]%s;%s\x07", code, body)
	}
}

// assertWritten waits for the bytes written to the terminal to reach want
func (e *emulator) assertWritten(t *testing.T, want string) {
	t.Helper()
	var got string
	for deadline := time.Now().Add(2 * time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
		e.mu.Lock()
		got = string(e.written)
		e.mu.Unlock()
		if got == want {
			return
		}
	}
	t.Errorf("written %q, want %q", got, want)
}

func (e *emulator) position() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

func TestCursorPositionWithNoise(t *testing.T) {
	e := newEmulator(t, func(e *emulator) {
		e.cursor = Position{24, 1}
		e.noise = "garbage"
	})
	p, err := e.client().CursorPosition()
	if err != nil {
		t.Fatal(err)
	}
	if p != (Position{24, 1}) {
		t.Errorf("unexpected position: %v", p)
	}
	e.assertWritten(t, cursorPositionRequest)
}

func TestCursorPositionSilent(t *testing.T) {
	e := newEmulator(t, func(e *emulator) { e.reports = 0 })
	p, err := e.client().CursorPosition()
	if err != nil || p != NoPosition {
		t.Errorf("CursorPosition() = %v, %v", p, err)
	}
}

func TestWindowSize(t *testing.T) {
	e := newEmulator(t, func(e *emulator) {
		e.cursor = Position{5, 7}
		e.size = Size{40, 120}
	})
	size, err := e.client().WindowSize()
	if err != nil {
		t.Fatal(err)
	}
	if size != (Size{40, 120}) || size.String() != "120x40" {
		t.Errorf("unexpected size: %v", size)
	}
	e.assertWritten(t, "\x1b[6n\x1b[10000;10000f\x1b[6n\x1b[5;7f")
	if p := e.position(); p != (Position{5, 7}) {
		t.Errorf("cursor not restored: %v", p)
	}
}

func TestWindowSizeCornerUnanswered(t *testing.T) {
	e := newEmulator(t, func(e *emulator) {
		e.cursor = Position{5, 7}
		e.reports = 1
	})
	size, err := e.client().WindowSize()
	if err != nil || size != NoSize {
		t.Errorf("WindowSize() = %v, %v", size, err)
	}
	e.assertWritten(t, "\x1b[6n\x1b[10000;10000f\x1b[6n\x1b[5;7f")
	if p := e.position(); p != (Position{5, 7}) {
		t.Errorf("cursor not restored: %v", p)
	}
}

func TestWindowSizeWithoutBaseline(t *testing.T) {
	e := newEmulator(t, func(e *emulator) { e.reports = 0 })
	size, err := e.client().WindowSize()
	if err != nil || size != NoSize {
		t.Errorf("WindowSize() = %v, %v", size, err)
	}
	e.assertWritten(t, cursorPositionRequest)
}

func TestColorQueries(t *testing.T) {
	e := newEmulator(t, func(e *emulator) {
		e.fg = "rgb:00ff/ff00/0ff0"
		e.bg = "rgb:ffff/ffff/ffff"
	})
	c := e.client()
	if fg, err := c.ForegroundColor(); err != nil || fg != (Color{255, 65280, 4080}) {
		t.Errorf("ForegroundColor() = %v, %v", fg, err)
	}
	if bg, err := c.BackgroundColor(); err != nil || bg != (Color{65535, 65535, 65535}) {
		t.Errorf("BackgroundColor() = %v, %v", bg, err)
	}
	if theme, err := c.Theme(); err != nil || theme != ThemeLight {
		t.Errorf("Theme() = %v, %v", theme, err)
	}
	if light, known, err := c.IsLightMode(); err != nil || !light || !known {
		t.Errorf("IsLightMode() = %v, %v, %v", light, known, err)
	}
	if dark, known, err := c.IsDarkMode(); err != nil || dark || !known {
		t.Errorf("IsDarkMode() = %v, %v, %v", dark, known, err)
	}
}

func TestDarkTheme(t *testing.T) {
	e := newEmulator(t, func(e *emulator) {
		e.fg = "rgb:ffff/ffff/ffff"
		e.bg = "rgb:0000/0000/0000"
	})
	if dark, known, err := e.client().IsDarkMode(); err != nil || !dark || !known {
		t.Errorf("IsDarkMode() = %v, %v, %v", dark, known, err)
	}
}

func TestThemeSilentBackground(t *testing.T) {
	e := newEmulator(t, func(e *emulator) { e.fg = "rgb:ffff/ffff/ffff" })
	c := e.client()
	if theme, err := c.Theme(); err != nil || theme != ThemeUnknown {
		t.Errorf("Theme() = %v, %v", theme, err)
	}
	if _, known, err := c.IsLightMode(); err != nil || known {
		t.Errorf("IsLightMode() = %v, %v", known, err)
	}
}

func TestColorsNotQueriedForDumbTerminal(t *testing.T) {
	e := newEmulator(t, func(e *emulator) { e.fg = "rgb:ffff/ffff/ffff" })
	c := New(Config{Device: e.slave.Name(), Timeout: 300 * time.Millisecond, Term: "dumb"})
	if fg, err := c.ForegroundColor(); err != nil || fg != NoColor {
		t.Errorf("ForegroundColor() = %v, %v", fg, err)
	}
	// Only the cursor query reaches the terminal
	if _, err := c.CursorPosition(); err != nil {
		t.Fatal(err)
	}
	e.assertWritten(t, cursorPositionRequest)
}

func TestQueryRestoresMode(t *testing.T) {
	e := newEmulator(t, nil)
	fd := int(e.slave.Fd())
	saved, err := rawterm.GetAttr(fd)
	if err != nil {
		t.Fatal(err)
	}
	err = e.client().Session(func(s *Session) error {
		mode, err := rawterm.GetAttr(fd)
		if err != nil {
			return err
		}
		if *mode != rawterm.Cbreak(*saved, 0, 3) {
			t.Error("session should run in cbreak mode")
		}
		if p := s.CursorPosition(); p != (Position{1, 1}) {
			t.Errorf("unexpected position: %v", p)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if restored, _ := rawterm.GetAttr(fd); *restored != *saved {
		t.Error("attributes not restored")
	}
}
