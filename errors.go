package envguard

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons a required key is reported missing.
const (
	ReasonNotSet = "not set"
	ReasonEmpty  = "empty"
)

// ErrMissingEnvVars matches any *MissingEnvVarsError via errors.Is.
var ErrMissingEnvVars = errors.New("envguard: missing environment variables")

// MissingEnvVarsError aggregates every required key that is not satisfied.
type MissingEnvVarsError struct {
	Sample  bool     // No primary file was given; only the environment was checked
	Path    string   // Primary file, "" when none
	Example string   // Manifest path
	Missing []string // Missing keys in manifest order
	Empty   []string // Subset of Missing that is set but empty
	Err     error    // Primary file load error, if any
}

// Error formats the missing keys as a multi-line message.
func (e *MissingEnvVarsError) Error() string {
	if len(e.Missing) == 0 {
		return "missing environment variables: none"
	}

	var b strings.Builder
	if len(e.Missing) == 1 {
		b.WriteString("missing environment variables: 1 key\n")
	} else {
		fmt.Fprintf(&b, "missing environment variables: %d keys\n", len(e.Missing))
	}

	for _, key := range e.Missing {
		fmt.Fprintf(&b, "  - %s: %s\n", key, e.Reason(key))
	}

	target := "the environment"
	if !e.Sample && e.Path != "" {
		target = e.Path + " or directly to the environment"
	}
	fmt.Fprintf(&b, "defined in %s; add them to %s\n", e.Example, target)

	if len(e.Empty) > 0 {
		b.WriteString("empty values are rejected; enable AllowEmptyValues to accept them\n")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, "reading the primary file also failed: %v\n", e.Err)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Reason returns ReasonEmpty or ReasonNotSet for a missing key, "" for any other key.
func (e *MissingEnvVarsError) Reason(key string) string {
	for _, k := range e.Empty {
		if k == key {
			return ReasonEmpty
		}
	}
	for _, k := range e.Missing {
		if k == key {
			return ReasonNotSet
		}
	}
	return ""
}

// Is reports whether target is ErrMissingEnvVars.
func (e *MissingEnvVarsError) Is(target error) bool {
	return target == ErrMissingEnvVars
}

func (e *MissingEnvVarsError) Unwrap() error {
	return e.Err
}

// LoadError reports a failure that stops reconciliation before the key check.
type LoadError struct {
	Op   string // "example", "path" or "merge"
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
