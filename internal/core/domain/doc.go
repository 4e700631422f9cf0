// Package domain defines the core domain models for imgcarve.
//
// Domain models are pure value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - Errors: coded errors for the carve, artifact and merge paths
//   - Manifest: the record of one carve run and its artifacts
//   - Run IDs and content digests used by the manifest
package domain
