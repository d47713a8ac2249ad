// Package logger provides structured logging utilities built on Go's standard
// slog package: a small constructor with environment presets and attribute
// helpers for the values the router logs most often.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("shop"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("navigation committed",
//		logger.TransitionID(nav.ID),
//		logger.Trigger(nav.Trigger.String()),
//		logger.URL(url),
//	)
//
// # Environment Presets
//
//	// Development: text format, debug level
//	logger.New(logger.WithDevelopment("shop"))
//
//	// Production: JSON format, info level
//	logger.New(logger.WithProduction("shop"))
//
// # Nil Safety
//
// Helpers return an empty slog.Attr for zero inputs, which slog drops, so
// logger.Error(err) can be passed unconditionally:
//
//	log.Error("transition failed", logger.Error(err), logger.Viewport(vp))
//
// Components in this module default to Discard and accept a logger through a
// WithLogger style option.
package logger
