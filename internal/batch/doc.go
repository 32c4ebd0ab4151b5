// Package batch orchestrates a whole conversion run: it discovers input
// files, skips outputs that are already fresh, drives the converter per file
// (sequentially or over a bounded worker pool), and aggregates the outcome
// into a report plus a failed-file manifest.
package batch
