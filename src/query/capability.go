package query

import (
	"strings"

	"github.com/asticode/go-astilog"
	"github.com/gdamore/tcell"
)

// IsXterm tells whether the terminal type names an xterm variant
func IsXterm(term string) bool {
	return strings.HasPrefix(term, "xterm")
}

// Colors returns the number of colors the terminfo entry for term
// declares, or 0 if there is no such entry.
func Colors(term string) int {
	if len(term) == 0 {
		return 0
	}
	info, err := tcell.LookupTerminfo(term)
	if err != nil || info == nil {
		astilog.Debugf("query: no terminfo entry for %q: %v", term, err)
		return 0
	}
	return info.Colors
}
