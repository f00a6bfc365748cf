// Package sourceenv provides environment variable stores for envguard.
//
// A store is read at call time and may be written to when a primary file is
// merged. The process store is backed by the real environment; the map store
// keeps variables in memory and is meant for tests and embedding.
//
// Example:
//
//	env := sourceenv.New(sourceenv.Options{Prefix: "APP_"})
//	checker := envguard.New().WithEnvironment(env)
package sourceenv
