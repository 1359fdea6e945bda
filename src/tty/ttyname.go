//go:build !windows

package tty

import (
	"os"
	"syscall"

	"github.com/mattn/go-isatty"
)

var devPrefixes = [...]string{"/dev/pts/", "/dev/"}

// Name returns the path of the terminal device attached to stderr, or an
// empty string if stderr is not a terminal device.
func Name() string {
	return nameOf(2)
}

func nameOf(fd int) string {
	var stat syscall.Stat_t
	if !isatty.IsTerminal(uintptr(fd)) || syscall.Fstat(fd, &stat) != nil {
		return ""
	}

	for _, prefix := range devPrefixes {
		files, err := os.ReadDir(prefix)
		if err != nil {
			continue
		}

		for _, file := range files {
			info, err := file.Info()
			if err != nil || info.Mode()&os.ModeCharDevice == 0 {
				continue
			}
			if sys, ok := info.Sys().(*syscall.Stat_t); ok && sys.Rdev == stat.Rdev {
				return prefix + file.Name()
			}
		}
	}
	return ""
}
