// Package logger is imgcarve's thin layer over log/slog.
//
// Commands build one Logger from the resolved log.level and log.format
// settings and hand it to the services, which pass it down to the artifact
// writer and the fragment merger. Text output uses short wall-clock
// timestamps; JSON output is left as slog renders it.
//
// A carve run attaches its run ID to the context so every line it logs
// can be correlated with the manifest:
//
//	ctx = logger.WithRunID(logger.WithLogger(ctx, log), runID)
//	logger.L(ctx).Info("carve complete", "segments", n)
package logger
