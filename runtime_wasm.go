//go:build wasm

package fiber

import "sync"

var once sync.Once
var globalRuntime *Runtime

// GetRuntime returns the single default runtime, wasm being single threaded.
func GetRuntime() *Runtime {
	once.Do(func() {
		globalRuntime = mustRuntime()
	})

	return globalRuntime
}
