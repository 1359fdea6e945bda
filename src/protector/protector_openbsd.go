//go:build openbsd

package protector

import "golang.org/x/sys/unix"

// Protect restricts the process to what ttyq needs: reading /dev for the
// terminal name and terminfo, and terminal ioctls.
func Protect() {
	unix.PledgePromises("stdio rpath wpath tty")
}
