// Package logging configures log/slog for the digest service and carries
// loggers through contexts.
//
// Example usage:
//
//	logger := logging.NewLogger(os.Stdout)
//	slog.SetDefault(logger)
//	ctx = logging.WithLogger(ctx, logger.With(slog.String("run_id", runID)))
//	logging.FromContext(ctx).Info("digest run started")
package logging
