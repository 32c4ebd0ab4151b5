// Package logging assembles the structured slog loggers used across crunch.
//
// It owns the console and JSON handlers, routes output to stdout plus the
// persistent crunch.log sink, and exposes attr helpers and a no-op logger for
// tests. Loggers are configured once at process start and treated as
// read-only collaborators afterward.
package logging
