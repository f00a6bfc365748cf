// Package sourcefile reads flat key/value files: dotenv, YAML, JSON or TOML.
//
// Format is auto-detected from extension (.yaml, .yml, .json, .toml);
// anything else is parsed as dotenv. Entries keep file order except for TOML,
// whose tables are unordered and are returned sorted by key.
//
// Example:
//
//	entries, err := sourcefile.New(".env.example", sourcefile.Options{}).Load(ctx)
package sourcefile
