//go:build !windows

// Package tty opens the controlling terminal directly, bypassing standard
// input and output, which may be redirected.
package tty

import (
	"bufio"
	"io"
	"os"

	"github.com/asticode/go-astilog"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// DefaultDevice is the controlling terminal of the process
const DefaultDevice string = "/dev/tty"

const defaultBufferSize = 4096

// Terminal is a read-write stream on a terminal device.
type Terminal struct {
	file *os.File
	r    io.Reader
	w    *bufio.Writer
}

// Open opens device read-write without buffering. It returns nil if the
// device does not exist, cannot be opened or is not a terminal.
func Open(device string) *Terminal {
	return OpenBuffered(device, 0)
}

// OpenBuffered is like Open with a buffer size. A negative size selects
// the default size and zero disables buffering. Devices that do not
// support seeking, terminals included, are never buffered so that writes
// reach the device before the next read starts.
func OpenBuffered(device string, bufsize int) *Terminal {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		astilog.Debugf("tty: cannot open %s: %v", device, err)
		return nil
	}
	// Opened in blocking mode, so os.NewFile keeps the descriptor out of
	// the runtime poller and reads honor VMIN/VTIME.
	file := os.NewFile(uintptr(fd), device)
	if !isatty.IsTerminal(file.Fd()) {
		astilog.Debugf("tty: %s is not a terminal", device)
		file.Close()
		return nil
	}

	t := &Terminal{file: file, r: file}
	if bufsize != 0 && seekable(file) {
		if bufsize < 0 {
			bufsize = defaultBufferSize
		}
		t.r = bufio.NewReaderSize(file, bufsize)
		t.w = bufio.NewWriterSize(file, bufsize)
	}
	return t
}

func seekable(file *os.File) bool {
	_, err := file.Seek(0, io.SeekCurrent)
	return err == nil
}

// With calls fn with the terminal opened on device, or with nil when there
// is none, and closes the terminal when fn returns.
func With(device string, fn func(*Terminal)) {
	t := Open(device)
	if t != nil {
		defer t.Close()
	}
	fn(t)
}

// Fd returns the descriptor of the terminal
func (t *Terminal) Fd() int {
	return int(t.file.Fd())
}

// Name returns the path the terminal was opened with
func (t *Terminal) Name() string {
	return t.file.Name()
}

// File returns the underlying file
func (t *Terminal) File() *os.File {
	return t.file
}

// Buffered tells whether reads and writes go through a buffer
func (t *Terminal) Buffered() bool {
	return t.w != nil
}

func (t *Terminal) Read(p []byte) (int, error) {
	return t.r.Read(p)
}

func (t *Terminal) Write(p []byte) (int, error) {
	if t.w != nil {
		return t.w.Write(p)
	}
	return t.file.Write(p)
}

// WriteString writes s to the terminal
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Flush writes any buffered data to the device
func (t *Terminal) Flush() error {
	if t.w != nil {
		return t.w.Flush()
	}
	return nil
}

// Close flushes and closes the terminal
func (t *Terminal) Close() error {
	err := t.Flush()
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}
	return err
}
