// Package service provides the carve and merge services for imgcarve.
//
// Services orchestrate the scanner, the artifact writer and the merger,
// and own everything a run needs around them: run IDs, logging, metrics
// and the manifest.
//
// This package contains:
//
//   - CarveService: scan an input file and write its segments
//   - CarveService.Scan: the same scan as a dry run, no files written
//   - CarveService.Watch: re-carve whenever the input file changes
//   - MergeService: concatenate a fragment directory into one file
//
// Services are stateless between calls and safe for concurrent use.
package service
