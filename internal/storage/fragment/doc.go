// Package fragment reassembles a directory of carved fragments into one
// file.
//
// Merge lists the immediate regular files of a directory, sorts them by
// full path and appends their bytes, in that order, to a fresh output
// file. Because carve names are zero-padded to a common width, the sorted
// order of a raw partition-mode output directory is the scan order, and
// the merge reproduces the original input byte for byte.
package fragment
