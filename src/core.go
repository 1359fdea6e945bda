// Package ttyq implements ttyq, a command-line tool that reports what the
// terminal says about itself.
package ttyq

import (
	"fmt"
	"io"
	"os"

	"github.com/asticode/go-astilog"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"

	"github.com/ttyq/ttyq/src/query"
	"github.com/ttyq/ttyq/src/rawterm"
	"github.com/ttyq/ttyq/src/tty"
	"github.com/ttyq/ttyq/src/util"
)

type report struct {
	out         io.Writer
	unsupported bool
}

func (r *report) line(label string, value string) {
	fmt.Fprintf(r.out, "%-9s %s\n", label, value)
}

func (r *report) unknown(label string) {
	r.unsupported = true
	r.line(label, "unknown")
}

// Run queries the terminal as requested by opts, prints the answers to
// standard output and returns the exit status.
func Run(opts *Options) int {
	if opts.Verbose {
		astilog.SetLogger(astilog.New(astilog.Configuration{Verbose: true}))
	}
	defer util.RunAtExitFuncs()

	config := query.DefaultConfig()
	config.Device = opts.Device
	config.Timeout = opts.Timeout
	client := query.New(config)

	r := &report{out: os.Stdout}
	if err := runQueries(client, opts, r); err != nil {
		errorExit(err.Error())
	}
	if opts.Keys {
		interrupted, err := echoKeys(opts.Device, os.Stdout)
		if err != nil {
			errorExit(err.Error())
		}
		if interrupted {
			return exitInterrupt
		}
	}
	if r.unsupported {
		return exitUnsupported
	}
	return exitOk
}

func runQueries(client *query.Client, opts *Options, r *report) error {
	if opts.Position || opts.Size || opts.Foreground || opts.Background || opts.Theme {
		r.line("device", client.Config().Device)
	}
	if opts.Name {
		if name := tty.Name(); len(name) > 0 {
			r.line("name", name)
		} else {
			r.unknown("name")
		}
	}
	if opts.Position {
		pos, err := client.CursorPosition()
		if err != nil {
			return err
		}
		if pos.Valid() {
			r.line("position", pos.String())
		} else {
			r.unknown("position")
		}
	}
	if opts.Size {
		size, err := client.WindowSize()
		if err != nil {
			return err
		}
		value := "unknown"
		if size.Valid() {
			value = size.String()
		} else {
			r.unsupported = true
		}
		if width, height, err := ioctlSize(client.Config().Device); err == nil {
			value += fmt.Sprintf(" (ioctl %dx%d)", width, height)
		}
		r.line("size", value)
	}

	var fg, bg query.Color
	if opts.Foreground || opts.Theme {
		var err error
		if fg, err = client.ForegroundColor(); err != nil {
			return err
		}
	}
	if opts.Background || opts.Theme {
		var err error
		if bg, err = client.BackgroundColor(); err != nil {
			return err
		}
	}
	for _, c := range []struct {
		enabled bool
		label   string
		color   query.Color
	}{{opts.Foreground, "fg", fg}, {opts.Background, "bg", bg}} {
		if !c.enabled {
			continue
		}
		if c.color.Valid() {
			r.line(c.label, c.color.String())
		} else {
			r.unknown(c.label)
		}
	}
	if opts.Theme {
		theme := query.ThemeOf(fg, bg)
		if theme == query.ThemeUnknown {
			r.unsupported = true
		}
		r.line("theme", theme.String())
	}

	if opts.Colors {
		r.line("colors", fmt.Sprintf("%d", client.Colors()))
	}
	if opts.Width != nil {
		rendered, err := measureWidth(client, *opts.Width)
		if err != nil {
			return err
		}
		expected := runewidth.StringWidth(*opts.Width)
		if rendered < 0 {
			r.unsupported = true
			r.line("width", fmt.Sprintf("%q: rendered unknown, runewidth %d", *opts.Width, expected))
		} else {
			r.line("width", fmt.Sprintf("%q: rendered %d, runewidth %d", *opts.Width, rendered, expected))
		}
	}
	return nil
}

func ioctlSize(device string) (int, int, error) {
	t := tty.Open(device)
	if t == nil {
		return 0, 0, errors.New("no terminal at " + device)
	}
	defer t.Close()
	return rawterm.GetSize(t.Fd())
}

// measureWidth prints text at the cursor and returns how many columns the
// cursor advanced, or -1 if that could not be determined. The text is
// erased and the cursor moved back afterwards.
func measureWidth(client *query.Client, text string) (int, error) {
	width := -1
	err := client.Session(func(s *query.Session) error {
		before := s.CursorPosition()
		if !before.Valid() {
			return nil
		}
		if err := s.Write(text); err != nil {
			return nil
		}
		after := s.CursorPosition()
		if err := s.MoveTo(before); err != nil {
			astilog.Debugf("width: cannot move back to %v: %v", before, err)
		} else if err := s.Write(eraseLine); err != nil {
			astilog.Debugf("width: cannot erase %q: %v", text, err)
		}
		if after.Valid() && after.Row == before.Row {
			width = after.Col - before.Col
		}
		return nil
	})
	return width, err
}

// echoKeys prints the bytes of every key read from the terminal in raw
// mode until 'q' or CTRL-C.
func echoKeys(device string, out io.Writer) (bool, error) {
	t := tty.Open(device)
	if t == nil {
		return false, errors.New("no terminal at " + device)
	}
	defer t.Close()

	guard, err := rawterm.Acquire(t.Fd(), rawterm.Raw, rawterm.Flush, 1, 0)
	if err != nil {
		return false, err
	}
	restore := util.AtExit(func() { guard.Release() })
	defer restore()

	// Output processing is off, so the carriage return has to be explicit
	newline := "\n"
	if util.ToTty() {
		newline = "\r\n"
	}
	fmt.Fprintf(out, "press keys, %q to quit%s", quitKey, newline)

	buf := make([]byte, keyBufferSize)
	for {
		n, err := t.Read(buf)
		if err == io.EOF {
			return false, nil
		} else if err != nil {
			return false, errors.Wrap(err, "read "+device)
		}
		key := buf[:n]
		fmt.Fprintf(out, "%-16q % x%s", key, key, newline)
		if n == 1 && key[0] == quitKey {
			return false, nil
		}
		if n == 1 && key[0] == ctrlC {
			return true, nil
		}
	}
}
