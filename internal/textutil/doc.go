// Package textutil provides small text helpers shared across the repo,
// currently filename sanitization for output paths.
package textutil
