/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches by returning default values. Dispatcher
options, interceptor options, and binding tables are all read through it.

# Basic Usage

	cfg, err := config.FromFile("callhook.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	dispatchCfg := cfg.Sub("dispatch")
	wrap := dispatchCfg.Bool("wrap_errors", true)
	depth := dispatchCfg.Int("max_depth", 64)

	for _, b := range cfg.List("bindings") {
	    member := b.String("member", "")
	    // ...
	}

# Loading

FromFile picks YAML or JSON by extension and expands ${VAR} references from
the environment before decoding. Decode reads one document from a reader; an
empty document is an empty Config and a non-mapping top level is an error.

# Type Coercion

Duration accepts a time.ParseDuration string, a number of seconds, or a
time.Duration. Int accepts float64 only when it has no fractional part, which
is how JSON numbers arrive.

Sub accepts both map[string]any (JSON, YAML v3) and map[any]any, converting
non-string keys with fmt.Sprint.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
