// Package main provides the entry point for imgcarve.
//
// imgcarve recovers PNG, JPG and GIF images embedded in a binary blob by
// their container signatures, and reassembles a directory of fragments
// back into one file:
//
//   - Carve: every segment of the input is written as one artifact
//   - Merge: the files of a directory are concatenated in name order
//   - Scan: the segment directory is listed without writing anything
//
// Usage:
//
//	imgcarve [options] INPUT
//	imgcarve --keep-raw-bin -o out disk.img
//	imgcarve --merge -o disk.bin out
//	imgcarve scan --format json disk.img
//
// A carve with --keep-raw-bin followed by a merge reproduces the input
// byte for byte.
package main
