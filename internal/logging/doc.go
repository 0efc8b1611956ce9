// Package logging builds the slog loggers used across the pipeline.
//
// Two output formats are supported: "console", a human-oriented single-line
// format with ANSI color when attached to a terminal, and "json" for
// machine-readable logs. Component loggers carry a standardized component
// attribute, and WithContext derives item/stage/correlation attributes from
// the request context so every stage log line identifies the work item it
// concerns.
package logging
