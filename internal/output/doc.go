// Package output formats prompt listings, prompt details and validation
// reports for display or machine consumption.
//
// Five formats are supported:
//   - text     human-readable terminal output (default)
//   - json     versioned envelopes for scripts and editors
//   - yaml     the same documents as json, in YAML
//   - markdown tables and sections for pasting into notes or issues
//   - sarif    SARIF v2.1.0, validation reports only
//
// Use [GetWriter] to obtain a [Writer] for a given format string.
package output
