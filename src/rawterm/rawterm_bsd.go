//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package rawterm

import "golang.org/x/sys/unix"

const getTermios = unix.TIOCGETA

func (w When) request() uint {
	switch w {
	case Drain:
		return unix.TIOCSETAW
	case Flush:
		return unix.TIOCSETAF
	}
	return unix.TIOCSETA
}
