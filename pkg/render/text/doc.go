// Package text wraps pongo2 behind a small renderer contract used for the
// auxiliary generated artefacts (model summary report, requirements file).
// Placeholder substitution for the Python sources lives in pkg/template; this
// engine is only used where loops and padding are needed.
package text
