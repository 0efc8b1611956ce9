// Package config loads, validates, and defaults the aircheck configuration.
//
// Configuration lives in a single TOML file. Load applies defaults first,
// then the file contents, then a normalize pass (path expansion) and a
// validate pass. Invalid configuration is fatal at startup; the pipeline
// never discovers configuration problems mid-batch.
package config
