//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// Package rawterm gets and sets terminal line-discipline attributes and
// switches a descriptor between canonical, raw and cbreak input modes.
package rawterm

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/ttyq/ttyq/src/util"
)

// When selects when new attributes take effect.
type When int

const (
	// Now applies the change immediately (TCSANOW)
	Now When = iota
	// Drain applies the change after pending output is written (TCSADRAIN)
	Drain
	// Flush is like Drain but also discards unread input (TCSAFLUSH)
	Flush
)

func (w When) String() string {
	switch w {
	case Now:
		return "now"
	case Drain:
		return "drain"
	case Flush:
		return "flush"
	}
	return fmt.Sprintf("When(%d)", int(w))
}

// ErrInvalidDescriptor is returned when no usable descriptor was given,
// e.g. a negative fd or a nil *os.File.
var ErrInvalidDescriptor = errors.New("rawterm: invalid file descriptor")

// DeviceError reports a failed attribute operation on a descriptor, most
// commonly because it does not refer to a terminal.
type DeviceError struct {
	Op  string
	Fd  int
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("rawterm: %s on fd %d: %v", e.Op, e.Fd, e.Err)
}

// Cause returns the underlying errno for errors.Cause
func (e *DeviceError) Cause() error { return e.Err }

func (e *DeviceError) Unwrap() error { return e.Err }

// Fd returns the descriptor of f.
func Fd(f *os.File) (int, error) {
	if f == nil {
		return -1, ErrInvalidDescriptor
	}
	return int(f.Fd()), nil
}

// GetAttr reads the current attributes of the terminal referred to by fd.
func GetAttr(fd int) (*unix.Termios, error) {
	if fd < 0 {
		return nil, ErrInvalidDescriptor
	}
	t, err := unix.IoctlGetTermios(fd, getTermios)
	if err != nil {
		return nil, &DeviceError{"get attributes", fd, err}
	}
	return t, nil
}

// SetAttr applies t to the terminal referred to by fd.
func SetAttr(fd int, when When, t *unix.Termios) error {
	if fd < 0 || t == nil {
		return ErrInvalidDescriptor
	}
	if err := unix.IoctlSetTermios(fd, when.request(), t); err != nil {
		return &DeviceError{"set attributes (" + when.String() + ")", fd, err}
	}
	return nil
}

// DeriveFunc computes mode attributes from a snapshot.
type DeriveFunc func(t unix.Termios, vmin, vtime uint8) unix.Termios

// Raw returns t with every layer of input and output processing disabled.
// vmin and vtime go to the VMIN and VTIME slots.
func Raw(t unix.Termios, vmin, vtime uint8) unix.Termios {
	t.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	t.Cc[unix.VMIN] = vmin
	t.Cc[unix.VTIME] = vtime
	return t
}

// Cbreak returns t with echo and line buffering disabled. Signal
// generation and extended input processing are left alone so that
// interrupt keys keep working.
func Cbreak(t unix.Termios, vmin, vtime uint8) unix.Termios {
	t.Lflag &^= unix.ECHO | unix.ICANON
	t.Cc[unix.VMIN] = vmin
	t.Cc[unix.VTIME] = vtime
	return t
}

func set(fd int, derive DeriveFunc, when When, vmin, vtime uint8) error {
	t, err := GetAttr(fd)
	if err != nil {
		return err
	}
	mode := derive(*t, vmin, vtime)
	return SetAttr(fd, when, &mode)
}

// SetRaw puts the terminal into raw mode without saving the previous state.
func SetRaw(fd int, when When, vmin, vtime uint8) error {
	return set(fd, Raw, when, vmin, vtime)
}

// SetCbreak puts the terminal into cbreak mode without saving the previous
// state.
func SetCbreak(fd int, when When, vmin, vtime uint8) error {
	return set(fd, Cbreak, when, vmin, vtime)
}

// Deciseconds converts d to a VTIME value, rounding up to the next
// decisecond. The result saturates at 255 (25.5s).
func Deciseconds(d time.Duration) uint8 {
	if d <= 0 {
		return 0
	}
	ds := (d + 100*time.Millisecond - 1) / (100 * time.Millisecond)
	return uint8(util.Constrain(int(ds), 0, 255))
}

// GetSize returns the window size reported by the TIOCGWINSZ ioctl.
func GetSize(fd int) (width, height int, err error) {
	if fd < 0 {
		return 0, 0, ErrInvalidDescriptor
	}
	width, height, err = term.GetSize(fd)
	if err != nil {
		return 0, 0, &DeviceError{"get window size", fd, err}
	}
	return width, height, nil
}
