//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package rawterm

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Guard holds the attributes a descriptor had before a mode was applied
// and puts them back on Release.
type Guard struct {
	fd    int
	when  When
	saved unix.Termios
}

// Acquire snapshots the attributes of fd, applies the attributes computed
// by derive and returns a Guard that restores the snapshot. Nested guards
// on the same descriptor each restore the state they found.
func Acquire(fd int, derive DeriveFunc, when When, vmin, vtime uint8) (*Guard, error) {
	if derive == nil {
		return nil, errors.New("rawterm: nil derive function")
	}
	saved, err := GetAttr(fd)
	if err != nil {
		return nil, err
	}
	mode := derive(*saved, vmin, vtime)
	if err := SetAttr(fd, when, &mode); err != nil {
		return nil, err
	}
	return &Guard{fd: fd, when: when, saved: *saved}, nil
}

// Fd returns the guarded descriptor
func (g *Guard) Fd() int {
	return g.fd
}

// Saved returns a copy of the snapshot taken by Acquire
func (g *Guard) Saved() unix.Termios {
	return g.saved
}

// Release re-applies the snapshot. It is safe to call more than once.
func (g *Guard) Release() error {
	saved := g.saved
	return SetAttr(g.fd, g.when, &saved)
}

// With runs fn with the mode computed by derive applied to fd. The
// previous attributes are restored however fn returns, including by
// panic. An error from fn takes precedence over a restore error.
func With(fd int, derive DeriveFunc, when When, vmin, vtime uint8, fn func() error) (err error) {
	g, err := Acquire(fd, derive, when, vmin, vtime)
	if err != nil {
		return err
	}
	defer func() {
		rerr := g.Release()
		if rerr == nil {
			return
		}
		if err == nil {
			err = rerr
		} else {
			err = errors.Wrapf(err, "restore also failed (%v)", rerr)
		}
	}()
	return fn()
}

// RawMode runs fn with fd in raw mode.
func RawMode(fd int, vmin, vtime uint8, fn func() error) error {
	return With(fd, Raw, Flush, vmin, vtime, fn)
}

// CbreakMode runs fn with fd in cbreak mode.
func CbreakMode(fd int, vmin, vtime uint8, fn func() error) error {
	return With(fd, Cbreak, Flush, vmin, vtime, fn)
}
