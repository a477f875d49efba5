// Package environment carries the deployment environment (development,
// staging, production) through configuration, request contexts and logs.
//
//	env := environment.Parse(os.Getenv("APP_ENV")) // "prod" -> Production
//	handler = environment.Middleware(env)(handler)
//
//	if environment.IsProduction(r.Context()) {
//		// production-only behaviour
//	}
//
// LoggerExtractor adds the environment to every record of a logger built
// with logger.WithContextExtractors.
package environment
