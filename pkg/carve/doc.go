// Package carve recovers image containers from raw binary data using
// magic byte signatures only.
//
// This package implements the scanning core of imgcarve:
//
//   - Signatures: Header and terminator literals for PNG, JPG and GIF
//   - Boundary Search: Terminator and next-header lookup over a byte slice
//   - Scanner: Single-pass partition or per-format independent passes
//   - Segments: Borrowed byte ranges into the scanned buffer
//   - Naming: Deterministic artifact file names per scan mode
//
// Usage:
//
//	s := carve.NewScanner(carve.WithMode(carve.ModePartition))
//	res := s.Scan(buf)
//	names := res.Names()
//	for i, seg := range res.Segments {
//		fmt.Println(names[i], seg.Format, seg.Start, seg.End)
//	}
//
// Memory:
//
// A Result and its Segments reference the scanned buffer directly. The
// buffer must not be modified while any Segment derived from it is in use.
//
// Limitations:
//
// Recognised spans are not validated. A GIF trailer (00 3B) is searched
// byte by byte and may match inside image data. In single-type mode the
// per-format passes are independent and the same bytes can be claimed by
// more than one format.
package carve
