// Package logging assembles structured slog loggers and formatting helpers used
// across sticqr commands.
//
// It owns the console/JSON handlers, routes output to stdout and a rotating
// log file, and exposes context-aware helpers so batch code can tag log lines
// with batch and QR identifiers. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
