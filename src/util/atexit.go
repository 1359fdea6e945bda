package util

import (
	"os"
	"sync"
)

var (
	atExitMutex sync.Mutex
	atExitFuncs []*exitFunc
)

type exitFunc struct {
	once sync.Once
	fn   func()
}

func (f *exitFunc) run() {
	f.once.Do(f.fn)
}

// AtExit registers the function fn to be called on program termination.
// The functions will be called in reverse order they were registered.
// The returned function runs fn right away and removes it from the exit
// list, so a terminal mode restored on the normal path is not restored
// again by Exit.
func AtExit(fn func()) func() {
	if fn == nil {
		panic("AtExit called with nil func")
	}
	f := &exitFunc{fn: fn}
	atExitMutex.Lock()
	atExitFuncs = append(atExitFuncs, f)
	atExitMutex.Unlock()
	return func() {
		f.run()
		atExitMutex.Lock()
		defer atExitMutex.Unlock()
		for i, g := range atExitFuncs {
			if g == f {
				atExitFuncs = append(atExitFuncs[:i], atExitFuncs[i+1:]...)
				break
			}
		}
	}
}

// RunAtExitFuncs runs any functions registered with AtExit().
func RunAtExitFuncs() {
	atExitMutex.Lock()
	fns := make([]*exitFunc, len(atExitFuncs))
	copy(fns, atExitFuncs)
	atExitMutex.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i].run()
	}
}

// Exit executes any functions registered with AtExit() then exits the program
// with os.Exit(code).
//
// NOTE: It must be used instead of os.Exit() since calling os.Exit() leaves
// the terminal in whatever mode the program put it in.
func Exit(code int) {
	defer os.Exit(code)
	RunAtExitFuncs()
}
