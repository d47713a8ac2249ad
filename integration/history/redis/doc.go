// Package redis persists router history in Redis, for server-driven UIs where
// the history stack has to outlive a single process.
//
// Connect creates a go-redis client with retry and exponential backoff, and
// Healthcheck returns a ping function suitable for readiness probes:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//
// A Backend binds one session key to a history stack. The stack is a list of
// JSON encoded entries plus the index of the current one, and every mutation
// runs as a Lua script so concurrent writers never observe a half applied
// push:
//
//	backend, err := redis.New(ctx, client, sessionID, "/", redis.WithTTL(time.Hour))
//	r, err := router.New(root, routes, router.WithHistory(backend))
//
// Back, Forward and Go move the index and emit popstate events to local
// subscribers. The move is also published on a per-session channel; a process
// running Listen for the same session forwards it to its own subscribers.
//
// Errors are wrapped with stable sentinels (ErrBackendFailure,
// ErrCorruptedEntry, ErrRedisNotReady and so on) so callers can use errors.Is.
// Moving outside the stack returns history.ErrNoEntry.
package redis
