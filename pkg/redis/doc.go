// Package redis connects to an optional Redis server and exposes a
// readiness check for it.
//
// Gatekeeper keeps all admission state in process memory; Redis only
// receives decision tallies from admission.RedisRecorder. Redis is enabled
// by setting REDIS_URL:
//
//	cfg, err := config.Load[redis.Config]()
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		if err != nil {
//			return err
//		}
//		defer client.Close()
//		checks = append(checks, httpserver.Check{Name: "redis", Check: redis.Healthcheck(client)})
//	}
//
// Errors are sentinel values joined with the underlying go-redis error, so
// errors.Is works for both.
package redis
