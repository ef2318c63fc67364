// Package logger builds *slog.Logger instances from functional options and
// provides attribute helpers that keep key names consistent.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.FromEnv(), "envctl"),
//	    logger.WithOutput(os.Stderr),
//	)
//	log.Info("environment selected",
//	    logger.Service("Quotes"),
//	    logger.Environment("prod"),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed without a nil check:
//
//	log.Warn("store read failed", logger.Error(err))
package logger
