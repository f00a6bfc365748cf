package envguard

import (
	"github.com/Azhovan/envguard/sourceenv"
	"github.com/Azhovan/envguard/sourcefile"
)

// KeyProvenance describes where a required key's value came from.
type KeyProvenance struct {
	Key    string // Environment key (e.g., "DB_HOST")
	Source string // Source identifier (e.g., "env:APP_DB_HOST", "file:.env")
	Empty  bool   // Whether the value is empty
}

// ProvenanceFor returns the provenance of a required key.
func (r *LoadResult) ProvenanceFor(key string) (KeyProvenance, bool) {
	if r == nil {
		return KeyProvenance{}, false
	}
	for _, p := range r.Provenance {
		if p.Key == key {
			return p, true
		}
	}
	return KeyProvenance{}, false
}

// sourceOf attributes a value to the primary file when the file defines the key
// with the same value, and to the environment variable actually read otherwise.
func sourceOf(key, value string, parsed KeyValueMap, path string, env Environment) string {
	if fileVal, ok := parsed.Get(key); ok && path != "" && fileVal.Value == value {
		return sourcefile.New(path, sourcefile.Options{}).Name()
	}
	if n, ok := env.(sourceenv.Namer); ok {
		return "env:" + n.VarName(key)
	}
	return "env:" + key
}
