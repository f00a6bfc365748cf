// Package envguard checks that every key listed in a manifest file is present in the environment.
//
// Quick Start:
//
//	res, err := envguard.New().
//	    WithExample(".env.example").
//	    WithPath(".env").
//	    Load(context.Background())
//
// The primary file (.env) is merged into the environment without overwriting
// variables that are already set. Every key of the manifest (.env.example) must
// then be set and, unless AllowEmptyValues is enabled, non-empty. Unsatisfied
// keys are reported together in a single *MissingEnvVarsError.
//
// Files may be dotenv, YAML, JSON or TOML; see package sourcefile.
package envguard
