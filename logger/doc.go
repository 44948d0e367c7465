// Package logger wraps zerolog with scoutkit conventions: component-tagged
// loggers, console or JSON output, and standard field keys for provider,
// model, and stream diagnostics.
package logger
