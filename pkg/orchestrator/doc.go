// Package orchestrator wires the loader → graph → code generator → template
// store pipeline, providing dependency injection friendly helpers for
// consumers that prefer a single entry point.
package orchestrator
