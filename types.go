package envguard

import (
	"github.com/Azhovan/envguard/sourceenv"
)

// DefaultExample is the manifest path used when Options.Example is empty.
const DefaultExample = ".env.example"

// Optional distinguishes a value from the empty-marker.
// An Optional with Set == false is the empty-marker: the key is present but intentionally blank.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// textValue maps empty text to the empty-marker.
func textValue(s string) Optional[string] {
	if s == "" {
		return Optional[string]{}
	}
	return Optional[string]{Value: s, Set: true}
}

// Environment is the variable store the Checker reads and merges into.
// sourceenv.New and sourceenv.NewMap provide implementations.
type Environment = sourceenv.Store

// Options configures a reconciliation run.
type Options struct {
	// Example is the manifest listing every required key. Default: ".env.example".
	Example string

	// Path is the optional primary file. Empty = only the environment is consulted.
	Path string

	// AllowEmptyValues accepts required keys that are set to an empty value.
	AllowEmptyValues bool
}

// LoadResult is the outcome of a successful reconciliation.
type LoadResult struct {
	// Parsed holds the primary file's contents (empty when no file was loaded).
	Parsed KeyValueMap

	// Required maps every required key to its environment value after the merge.
	Required map[string]Optional[string]

	// RequiredKeys lists the required keys in manifest order.
	RequiredKeys []string

	// Provenance records where each required key's value came from, in manifest order.
	Provenance []KeyProvenance

	// Err is the primary file load error, if any.
	Err error

	// ExampleErr is the manifest load error, if any.
	ExampleErr error
}

// KeyValueMap is an immutable, ordered mapping from key to value.
// The zero value is an empty map.
type KeyValueMap struct {
	keys   []string
	values map[string]Optional[string]
}

// newKeyValueMap builds a map from ordered pairs. A repeated key keeps its
// first position and takes its last value.
func newKeyValueMap(keys []string, values []Optional[string]) KeyValueMap {
	m := KeyValueMap{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]Optional[string], len(keys)),
	}
	for i, key := range keys {
		if _, dup := m.values[key]; !dup {
			m.keys = append(m.keys, key)
		}
		m.values[key] = values[i]
	}
	return m
}

// Keys returns the keys in file order.
func (m KeyValueMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value of key and whether key is present.
func (m KeyValueMap) Get(key string) (Optional[string], bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m KeyValueMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of keys.
func (m KeyValueMap) Len() int {
	return len(m.keys)
}

// Map returns a copy of the contents as a plain map.
func (m KeyValueMap) Map() map[string]Optional[string] {
	out := make(map[string]Optional[string], len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
