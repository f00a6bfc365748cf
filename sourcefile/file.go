package sourcefile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Azhovan/envguard/internal/normalize"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatDotenv = "dotenv"
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatTOML   = "toml"
)

// Options configures file source behavior.
type Options struct {
	// Format: "dotenv", "yaml", "json" or "toml". Auto-detected from extension if empty.
	Format string
}

// Entry is one key/value assignment read from a file.
type Entry struct {
	Key   string
	Value string
	Null  bool // Explicit null (YAML "KEY:", JSON null)
}

// File is a key/value file on disk.
type File struct {
	path string
	opts Options
}

// New creates a file-based source.
func New(path string, opts Options) *File {
	return &File{
		path: path,
		opts: opts,
	}
}

// Path returns the path the file is read from.
func (f *File) Path() string {
	return f.path
}

// Name returns a human-readable identifier for this source.
func (f *File) Name() string {
	return "file:" + filepath.Base(f.path)
}

// Format returns the explicit format or the one inferred from the extension.
func (f *File) Format() string {
	if f.opts.Format != "" {
		return strings.ToLower(f.opts.Format)
	}
	return InferFormat(f.path)
}

// Load reads and parses the file.
// Read failures return a *ReadError and parse failures a *ParseError; both come with nil entries.
func (f *File) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &ReadError{Path: f.path, Err: err}
	}

	format := f.Format()
	entries, err := Parse(data, format)
	if err != nil {
		return nil, &ParseError{Path: f.path, Format: format, Err: err}
	}
	return entries, nil
}

// ReadError reports a file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Code returns a short failure code: ENOENT, EACCES or EIO.
func (e *ReadError) Code() string {
	switch {
	case errors.Is(e.Err, fs.ErrNotExist):
		return "ENOENT"
	case errors.Is(e.Err, fs.ErrPermission):
		return "EACCES"
	default:
		return "EIO"
	}
}

// ParseError reports malformed file content.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s file %s: %v", strings.ToUpper(e.Format), e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes data in the given format.
func Parse(data []byte, format string) ([]Entry, error) {
	switch strings.ToLower(format) {
	case FormatDotenv, "env", "":
		return parseDotenv(data)
	case FormatYAML, "yml":
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatTOML:
		return parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: dotenv, yaml, json, toml)", format)
	}
}

// InferFormat maps a file extension to a format, defaulting to dotenv.
func InferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatDotenv
	}
}

// parseDotenv decodes values with godotenv and recovers the key order with a line scan.
// References like ${KEY} are expanded by godotenv against earlier keys of the same
// file only; an unresolved reference expands to an empty string.
func parseDotenv(data []byte) ([]Entry, error) {
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(values))
	seen := make(map[string]bool, len(values))

	// open holds the quote character of a multi-line value still being read.
	var open byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		if open != 0 {
			if closesQuote(scanner.Text(), open) {
				open = 0
			}
			continue
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexAny(line, "=:")
		if idx <= 0 {
			continue
		}
		if rest := strings.TrimSpace(line[idx+1:]); rest != "" && (rest[0] == '"' || rest[0] == '\'') {
			if !closesQuote(rest[1:], rest[0]) {
				open = rest[0]
			}
		}

		key := normalize.Key(line[:idx])
		value, ok := values[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Keys the scan could not place keep a stable order at the end.
	var rest []string
	for key := range values {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		entries = append(entries, Entry{Key: key, Value: values[key]})
	}

	return entries, nil
}

// closesQuote reports whether s contains the closing quote q.
// Backslash escapes are honored inside double quotes.
func closesQuote(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		if q == '"' && s[i] == '\\' {
			i++
			continue
		}
		if s[i] == q {
			return true
		}
	}
	return false
}

func parseYAML(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	switch root.Kind {
	case 0:
		return nil, nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: top-level value must be a mapping", root.Line)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
			return nil, fmt.Errorf("line %d: keys must be non-empty strings", keyNode.Line)
		}
		if valueNode.Kind == yaml.AliasNode && valueNode.Alias != nil {
			valueNode = valueNode.Alias
		}
		if valueNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: key %q: nested values are not supported", valueNode.Line, keyNode.Value)
		}

		entry := Entry{Key: keyNode.Value}
		if valueNode.Tag == "!!null" {
			entry.Null = true
		} else {
			entry.Value = valueNode.Value
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseJSON(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("top-level value must be an object")
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if key == "" {
			return nil, errors.New("keys must be non-empty strings")
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if raw == nil {
			entries = append(entries, Entry{Key: key, Null: true})
			continue
		}
		value, err := formatScalar(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseTOML(data []byte) ([]Entry, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	keys, err := tomlKeyOrder(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		delete(raw, key)
		value, err := formatScalar(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if len(raw) > 0 {
		rest := make([]string, 0, len(raw))
		for key := range raw {
			rest = append(rest, key)
		}
		sort.Strings(rest)
		for _, key := range rest {
			value, err := formatScalar(raw[key])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			entries = append(entries, Entry{Key: key, Value: value})
		}
	}
	return entries, nil
}

// tomlKeyOrder lists the top-level keys of a TOML document in the order they appear.
// Table headers count as keys so nested values are reported where they start.
func tomlKeyOrder(data []byte) ([]string, error) {
	p := unstable.Parser{}
	p.Reset(data)

	var keys []string
	inTable := false
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			inTable = true
		case unstable.KeyValue:
			if inTable {
				continue
			}
		default:
			continue
		}

		it := e.Key()
		if !it.Next() {
			continue
		}
		key := string(it.Node().Data)
		if key == "" {
			return nil, errors.New("keys must be non-empty strings")
		}
		keys = append(keys, key)
	}
	return keys, p.Error()
}

// formatScalar renders a decoded scalar as text. Maps and slices are rejected.
func formatScalar(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case json.Number:
		return val.String(), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case map[string]any, []any:
		return "", errors.New("nested values are not supported")
	default:
		return fmt.Sprint(val), nil
	}
}
