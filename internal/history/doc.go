// Package history records each batch run and its per-file outcomes in a
// SQLite database so past conversions stay inspectable from the CLI. The
// store is best-effort: a history failure never fails a batch.
package history
