package ttyq

import (
	"time"

	"github.com/ttyq/ttyq/src/query"
)

const (
	defaultTimeout = query.DefaultTimeout
	minTimeout     = 100 * time.Millisecond
	// VTIME is a single byte of deciseconds
	maxTimeout = 25500 * time.Millisecond

	// Bytes read at once in --keys mode
	keyBufferSize = 64

	// Ends --keys
	quitKey = 'q'
	ctrlC   = 0x03

	// Clears the text printed by --width
	eraseLine = "\x1b[K"
)

const (
	exitOk          = 0
	exitUnsupported = 1
	exitError       = 2
	exitInterrupt   = 130
)
