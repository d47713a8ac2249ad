// Package config fills configuration structs from the environment.
//
// Load reads a .env file once per process (a missing file is fine), parses
// the environment into T with caarlos0/env and caches the result per type, so
// every package asking for the same struct sees the same values:
//
//	var cfg router.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	r, err := router.NewFromConfig(cfg, root, routes)
//
// The configuration structs of this module and their variables:
//
//	router.Config     ROUTER_SWAP_STRATEGY, ROUTER_DEFER_UNTIL, ROUTER_TITLE_SEPARATOR,
//	                  ROUTER_BASE_PATH, ROUTER_USE_HASH
//	inspect.Config    INSPECT_ADDR, INSPECT_READ_TIMEOUT, INSPECT_IDLE_TIMEOUT,
//	                  INSPECT_SHUTDOWN_TIMEOUT, INSPECT_CLIENT_BUFFER, INSPECT_LOAD_RATE,
//	                  INSPECT_LOAD_BURST
//	redis.Config      REDIS_URL, REDIS_RETRY_ATTEMPTS, REDIS_RETRY_INTERVAL,
//	                  REDIS_CONNECT_TIMEOUT, REDIS_SCAN_BATCH_SIZE, REDIS_HISTORY_PREFIX,
//	                  REDIS_HISTORY_TTL
//	sqlite.Config     JOURNAL_SQLITE_PATH, JOURNAL_SQLITE_BUSY_TIMEOUT, JOURNAL_RETENTION
//
// Enumerations such as viewport.SwapStrategy implement encoding.TextUnmarshaler,
// so an unknown value fails Load instead of silently falling back to a default.
//
// MustLoad panics on error and suits program start-up. Because values are
// cached, changing the environment after the first Load of a type has no
// effect on later calls for that type.
package config
