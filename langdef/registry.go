package langdef

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrAlreadyLoaded is returned by a second Load.
var ErrAlreadyLoaded = errors.New("language definition already loaded")

var (
	loadMu   sync.Mutex
	instance atomic.Pointer[Definition]
)

// Load parses text into the process-wide definition. It may succeed once;
// later calls return ErrAlreadyLoaded and a malformed document returns a
// *ConfigError. Both leave the process unable to translate and should be
// treated as fatal by the caller.
func Load(text string) error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if instance.Load() != nil {
		return ErrAlreadyLoaded
	}
	def, err := Parse([]byte(text))
	if err != nil {
		return err
	}
	instance.Store(def)
	return nil
}

// MustLoad is Load that panics on error.
func MustLoad(text string) {
	if err := Load(text); err != nil {
		panic(err)
	}
}

// Get returns the loaded definition. Calling it before a successful Load is
// a programming error and panics.
func Get() *Definition {
	def := instance.Load()
	if def == nil {
		panic("langdef: language definition has not been loaded")
	}
	return def
}

// Loaded reports whether Load has succeeded.
func Loaded() bool {
	return instance.Load() != nil
}

// Unload clears the process-wide definition. It exists for shutdown and
// tests; nothing may hold on to the old definition across an Unload.
func Unload() {
	loadMu.Lock()
	defer loadMu.Unlock()
	instance.Store(nil)
}
