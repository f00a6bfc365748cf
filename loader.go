package envguard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Azhovan/envguard/sourceenv"
	"github.com/Azhovan/envguard/sourcefile"
)

// Checker reconciles a manifest of required keys against an environment.
// A Checker holds no state between calls; the only side effect of Load is the
// merge of the primary file into the environment.
// Not safe for concurrent use against a shared Environment.
type Checker struct {
	opts          Options
	env           Environment
	logger        *zap.Logger
	strictExample bool
}

// New creates a Checker reading the process environment with default options.
func New() *Checker {
	return &Checker{
		env:    sourceenv.New(sourceenv.Options{}),
		logger: zap.NewNop(),
	}
}

// Load runs a Checker configured with opts against the process environment.
func Load(ctx context.Context, opts Options) (*LoadResult, error) {
	return New().WithOptions(opts).Load(ctx)
}

// WithOptions replaces all options.
func (c *Checker) WithOptions(opts Options) *Checker {
	c.opts = opts
	return c
}

// WithExample sets the manifest path.
func (c *Checker) WithExample(path string) *Checker {
	c.opts.Example = path
	return c
}

// WithPath sets the primary file path.
func (c *Checker) WithPath(path string) *Checker {
	c.opts.Path = path
	return c
}

// AllowEmptyValues controls whether empty required keys are accepted. Default: false.
func (c *Checker) AllowEmptyValues(allow bool) *Checker {
	c.opts.AllowEmptyValues = allow
	return c
}

// WithEnvironment sets the variable store. Nil is ignored.
func (c *Checker) WithEnvironment(env Environment) *Checker {
	if env != nil {
		c.env = env
	}
	return c
}

// WithLogger sets the logger. Nil restores the no-op logger.
func (c *Checker) WithLogger(logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
	return c
}

// StrictExample controls whether an unreadable manifest fails Load. Default: false,
// in which case the read error is reported in LoadResult.ExampleErr and no key is required.
func (c *Checker) StrictExample(strict bool) *Checker {
	c.strictExample = strict
	return c
}

// Options returns the effective options, with defaults applied.
func (c *Checker) Options() Options {
	opts := c.opts
	if opts.Example == "" {
		opts.Example = DefaultExample
	}
	return opts
}

// Load reads the manifest, merges the primary file into the environment and
// checks every required key.
// Returns *MissingEnvVarsError listing all unsatisfied keys, or *LoadError when
// a file is malformed or the environment rejects a write.
func (c *Checker) Load(ctx context.Context) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := c.Options()

	// Step 1: Enumerate required keys
	manifest, exampleErr := LoadFile(ctx, opts.Example)
	if exampleErr != nil {
		if fatalLoadErr(exampleErr) || c.strictExample {
			return nil, &LoadError{Op: "example", Path: opts.Example, Err: exampleErr}
		}
		c.logger.Debug("example file not loaded",
			zap.String("path", opts.Example),
			zap.Error(exampleErr))
	}

	// Step 2: Load the primary file and merge it into the environment
	parsed := newKeyValueMap(nil, nil)
	var parsedErr error
	if opts.Path != "" {
		parsed, parsedErr = LoadFile(ctx, opts.Path)
		if parsedErr != nil {
			if fatalLoadErr(parsedErr) {
				return nil, &LoadError{Op: "path", Path: opts.Path, Err: parsedErr}
			}
			c.logger.Debug("primary file not loaded",
				zap.String("path", opts.Path),
				zap.Error(parsedErr))
		}

		merged, err := c.merge(parsed)
		if err != nil {
			return nil, &LoadError{Op: "merge", Path: opts.Path, Err: err}
		}
		c.logger.Debug("primary file merged",
			zap.String("path", opts.Path),
			zap.Int("keys", parsed.Len()),
			zap.Int("merged", merged))
	}

	// Step 3: Read required keys from the environment
	keys := manifest.Keys()
	required := make(map[string]Optional[string], len(keys))
	provenance := make([]KeyProvenance, 0, len(keys))
	var missing, empty []string

	for _, key := range keys {
		value, ok := c.env.Lookup(key)
		if !ok {
			missing = append(missing, key)
			continue
		}

		required[key] = textValue(value)
		provenance = append(provenance, KeyProvenance{
			Key:    key,
			Source: sourceOf(key, value, parsed, opts.Path, c.env),
			Empty:  value == "",
		})

		// Step 4: Apply the empty-value policy
		if value == "" && !opts.AllowEmptyValues {
			missing = append(missing, key)
			empty = append(empty, key)
		}
	}

	// Step 5: Report every unsatisfied key at once
	if len(missing) > 0 {
		c.logger.Warn("required environment variables missing",
			zap.String("example", opts.Example),
			zap.Strings("missing", missing))
		return nil, &MissingEnvVarsError{
			Sample:  opts.Path == "",
			Path:    opts.Path,
			Example: opts.Example,
			Missing: missing,
			Empty:   empty,
			Err:     parsedErr,
		}
	}

	return &LoadResult{
		Parsed:       parsed,
		Required:     required,
		RequiredKeys: keys,
		Provenance:   provenance,
		Err:          parsedErr,
		ExampleErr:   exampleErr,
	}, nil
}

// merge writes every parsed key that is not already set into the environment.
// Existing variables always win.
func (c *Checker) merge(parsed KeyValueMap) (int, error) {
	merged := 0
	for _, key := range parsed.keys {
		if _, ok := c.env.Lookup(key); ok {
			continue
		}
		if err := c.env.Set(key, parsed.values[key].Value); err != nil {
			return merged, fmt.Errorf("set %s: %w", key, err)
		}
		merged++
	}
	return merged, nil
}

// LoadFile reads a key/value file into a KeyValueMap.
// On failure it returns an empty map with the error (*sourcefile.ReadError or
// *sourcefile.ParseError) so callers can decide whether it matters.
func LoadFile(ctx context.Context, path string) (KeyValueMap, error) {
	entries, err := sourcefile.New(path, sourcefile.Options{}).Load(ctx)
	if err != nil {
		return newKeyValueMap(nil, nil), err
	}

	keys := make([]string, len(entries))
	values := make([]Optional[string], len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		if !e.Null {
			values[i] = textValue(e.Value)
		}
	}
	return newKeyValueMap(keys, values), nil
}

// fatalLoadErr reports errors that must stop Load: malformed files and a done context.
// Unreadable files are not fatal.
func fatalLoadErr(err error) bool {
	var parseErr *sourcefile.ParseError
	return errors.As(err, &parseErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
