package envguard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpResult.
type dumpConfig struct {
	withSources bool            // Include source attribution for each key
	asJSON      bool            // Output as JSON instead of text format
	indent      string          // Indentation for JSON output (default: "  ")
	secrets     map[string]bool // Keys whose values are redacted
}

// WithSources includes source attribution for each key in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs the result as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "). An empty indent produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// WithSecrets redacts the values of the given keys as "***redacted***".
func WithSecrets(keys ...string) DumpOption {
	return func(cfg *dumpConfig) {
		for _, k := range keys {
			cfg.secrets[k] = true
		}
	}
}

// DumpResult writes the required keys of a result and their values in manifest order.
// Empty values print as nothing in text output and as null in JSON.
// Returns an error if writing to the writer fails.
func DumpResult(w io.Writer, res *LoadResult, opts ...DumpOption) error {
	if res == nil {
		return fmt.Errorf("result is nil")
	}

	config := dumpConfig{
		indent:  "  ",
		secrets: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&config)
	}

	if config.asJSON {
		return dumpAsJSON(w, res, config)
	}
	return dumpAsText(w, res, config)
}

// dumpAsText outputs the result as KEY=value lines.
func dumpAsText(w io.Writer, res *LoadResult, config dumpConfig) error {
	for _, key := range res.RequiredKeys {
		value := res.Required[key]
		line := key + "=" + displayValue(key, value, config)
		if config.withSources {
			if prov, ok := res.ProvenanceFor(key); ok {
				line += fmt.Sprintf(" (source: %s)", prov.Source)
			}
		}
		line += "\n"

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

type jsonEntry struct {
	Value  *string `json:"value"`
	Source string  `json:"source,omitempty"`
}

// dumpAsJSON outputs the result as a JSON object keyed by variable name.
// Members follow manifest order, so the object is assembled by hand.
func dumpAsJSON(w io.Writer, res *LoadResult, config dumpConfig) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range res.RequiredKeys {
		var value *string
		if v := res.Required[key]; v.Set {
			s := displayValue(key, v, config)
			value = &s
		}

		var member any = value
		if config.withSources {
			entry := jsonEntry{Value: value}
			if prov, ok := res.ProvenanceFor(key); ok {
				entry.Source = prov.Source
			}
			member = entry
		}

		name, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("json marshal error: %w", err)
		}
		data, err := json.Marshal(member)
		if err != nil {
			return fmt.Errorf("json marshal error: %w", err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')

	out := buf.Bytes()
	if config.indent != "" {
		var indented bytes.Buffer
		if err := json.Indent(&indented, out, "", config.indent); err != nil {
			return fmt.Errorf("json indent error: %w", err)
		}
		out = indented.Bytes()
	}

	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func displayValue(key string, v Optional[string], config dumpConfig) string {
	if !v.Set {
		return ""
	}
	if config.secrets[key] {
		return redacted
	}
	return v.Value
}
