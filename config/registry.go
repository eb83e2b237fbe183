package config

import (
	"sync"

	"trpc.group/trpc-go/evcore/everr"
	"trpc.group/trpc-go/evcore/offload"
)

const (
	defaultPoolName = "default"
	defaultThreads  = offload.DefaultThreads
	defaultMaxQueue = offload.DefaultMaxQueue
)

// Registry holds every declared thread_pool directive, de-duplicated
// by name. A zero Registry is ready to use; the package-level
// Declare/Lookup/Default operate on a process-wide default instance
// the same way the teacher's loadbalance package keeps a process-wide
// builder map guarded by a RWMutex (loadbalance.go).
type Registry struct {
	mu    sync.RWMutex
	pools map[string]Directive
}

// NewRegistry returns an empty Registry pre-populated with the
// "default" pool (threads=32, max_queue=65536).
func NewRegistry() *Registry {
	r := &Registry{pools: make(map[string]Directive)}
	r.pools[defaultPoolName] = Directive{Name: defaultPoolName, Threads: defaultThreads, MaxQueue: defaultMaxQueue}
	return r
}

// Declare registers d, overriding any prior declaration with the same
// name; "thread_pool default ..." is legal and replaces the built-in
// default sizing.
func (r *Registry) Declare(d Directive) {
	r.mu.Lock()
	r.pools[d.Name] = d
	r.mu.Unlock()
}

// Lookup returns the named pool's Directive. Referencing a name that
// was never declared (and is not "default") is a fatal configuration
// error (spec §4.8).
func (r *Registry) Lookup(name string) (Directive, error) {
	r.mu.RLock()
	d, ok := r.pools[name]
	r.mu.RUnlock()
	if !ok {
		return Directive{}, everr.Wrapf(everr.ConfigError, "thread_pool %q was never declared", name)
	}
	return d, nil
}

// Default returns the built-in "default" pool's current Directive.
func (r *Registry) Default() Directive {
	d, _ := r.Lookup(defaultPoolName)
	return d
}

var defaultRegistry = NewRegistry()

// Declare registers d on the process-wide default Registry.
func Declare(d Directive) { defaultRegistry.Declare(d) }

// Lookup resolves name on the process-wide default Registry.
func Lookup(name string) (Directive, error) { return defaultRegistry.Lookup(name) }

// Default returns the process-wide default Registry's "default" pool.
func Default() Directive { return defaultRegistry.Default() }
