package rawterm

import "golang.org/x/sys/unix"

const getTermios = unix.TCGETS

func (w When) request() uint {
	switch w {
	case Drain:
		return unix.TCSETSW
	case Flush:
		return unix.TCSETSF
	}
	return unix.TCSETS
}
