// Package logger builds *slog.Logger values with functional options, helper
// attribute constructors and injection of request-scoped values from
// context.Context.
//
// New creates a text or JSON handler depending on the configured Format and
// wraps it in a ContextHandler, which runs every registered ContextExtractor
// on each log call and appends the attributes they return. Options cover:
//
//   - output format (text or json)
//   - the minimum level, by value or by name
//   - static attributes applied to every record
//   - ContextExtractor callbacks such as requestid.LoggerExtractor
//
// WithEnvironment picks per-environment defaults: development logs text at
// debug level, staging and production log JSON at info level. Every record
// then carries "service" and "env" attributes.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(os.Getenv("APP_ENV")), "gatekeeper"),
//		logger.WithLevelName(os.Getenv("LOG_LEVEL")),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "rate limit exceeded",
//		logger.Identity("user:42"),
//		logger.Tier("api"),
//	)
//
// # Attributes
//
// The helpers in attr.go keep attribute keys consistent across packages.
// Error and Errors return an empty attribute for nil errors, so
//
//	log.Info("operation finished", logger.Error(err))
//
// needs no nil check.
package logger
