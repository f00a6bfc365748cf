package sourceenv

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Azhovan/envguard/internal/normalize"
)

// Store is a mutable key/value view of an environment.
type Store interface {
	// Lookup returns the value of key and whether it is set (possibly to "").
	Lookup(key string) (string, bool)

	// Set assigns value to key.
	Set(key, value string) error
}

// Namer is implemented by stores that read a key from a differently named variable.
type Namer interface {
	// VarName returns the name of the variable backing key.
	VarName(key string) string
}

// Options configures the process environment store.
type Options struct {
	// Prefix is prepended to every key before it reaches the process environment
	// (e.g. with Prefix "APP_", key "PORT" reads and writes APP_PORT).
	// Empty = keys are used as-is.
	Prefix string
}

type processStore struct {
	opts Options
}

// New creates a store backed by the process environment.
// It performs no locking; callers sharing it across goroutines must serialize access.
func New(opts Options) Store {
	return &processStore{opts: opts}
}

// VarName returns key with the configured prefix applied.
func (p *processStore) VarName(key string) string {
	return normalize.ApplyPrefix(p.opts.Prefix, key)
}

// Lookup reads the variable via os.LookupEnv.
func (p *processStore) Lookup(key string) (string, bool) {
	return os.LookupEnv(p.VarName(key))
}

// Set writes the variable via os.Setenv.
func (p *processStore) Set(key, value string) error {
	name := p.VarName(key)
	if err := os.Setenv(name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Map is an in-memory Store. The zero value is ready to use. Safe for concurrent use.
type Map struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMap creates a Map holding a copy of vars.
func NewMap(vars map[string]string) *Map {
	m := &Map{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

// FromEnviron creates a Map from KEY=VALUE pairs as returned by os.Environ.
// Entries without '=' are skipped.
func FromEnviron(environ []string) *Map {
	m := &Map{vars: make(map[string]string, len(environ))}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		m.vars[key] = value
	}
	return m
}

// Lookup returns the stored value of key.
func (m *Map) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[key]
	return v, ok
}

// Set stores value under key.
func (m *Map) Set(key, value string) error {
	if !normalize.ValidKey(key) {
		return fmt.Errorf("invalid environment key %q", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vars == nil {
		m.vars = make(map[string]string)
	}
	m.vars[key] = value
	return nil
}

// Environ returns the contents as sorted KEY=VALUE pairs, suitable for exec.Cmd.Env.
func (m *Map) Environ() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
