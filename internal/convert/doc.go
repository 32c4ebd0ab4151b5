// Package convert invokes the external transcoder on a single input file
// under a fixed parameter profile and a hard deadline, and classifies the
// outcome into a success/failure result that never escapes as an error.
package convert
