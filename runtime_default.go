//go:build !wasm

package fiber

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

// GetRuntime returns the calling goroutine's default runtime, creating it
// with the in-memory renderer on first use.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := mustRuntime()
	runtimes.Store(gid, r)
	return r
}
