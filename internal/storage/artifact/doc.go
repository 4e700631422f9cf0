// Package artifact writes carved segments to disk.
//
// A Writer turns a carve.Result into one file per segment inside an output
// directory:
//
//   - writer.go: Writer, options and the per-run Report
//   - codec.go: Codec and Image, the decode/re-encode collaborator
//
// Segments are either copied verbatim (keep-raw) or decoded and re-saved in
// the format their tag names. OPAQUE segments are always copied verbatim.
// Every file is written to a temporary name and renamed into place, so a
// crash never leaves a half-written artifact under its final name.
//
// A failure on one segment is logged and recorded in the Report; it never
// stops the others. Only context cancellation aborts a batch.
package artifact
