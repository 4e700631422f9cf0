// Package output renders imgcarve results for the terminal and for scripts.
//
// Scan segments, version info and configuration go through a Formatter
// chosen by --format: an aligned table (with extra digest columns under
// --wide), JSON or YAML. Paths are never HTML-escaped.
//
// Long runs draw on stderr when --progress is set: a Spinner while the
// input is scanned and a ProgressBar while artifacts are written or
// fragments merged.
package output
