package constants

import "time"

const (
	// RedisTokenKeyPrefix prefixes session identity-token keys in redis.
	RedisTokenKeyPrefix = "storefront:token"
	// RedisTokenTTL is how long a guest identity token survives without activity.
	RedisTokenTTL = 720 * time.Hour
	// RedisDialTimeout is the timeout for the redis dialer.
	RedisDialTimeout = 10 * time.Second
	// RedisClientMaxRetries is the maximum number of retries for the redis client.
	RedisClientMaxRetries = 10
	// RedisClientReadTimeout is the read timeout for the redis client.
	RedisClientReadTimeout = 30 * time.Second
	// RedisClientWriteTimeout is the write timeout for the redis client.
	RedisClientWriteTimeout = 30 * time.Second
	// RedisClientPoolTimeout is the pool timeout for the redis client.
	RedisClientPoolTimeout = 30 * time.Second
	// RedisClientPoolSize is the pool size for the redis client.
	RedisClientPoolSize = 20
	// RedisClientMinIdleConns is the minimum number of idle connections for the redis client.
	RedisClientMinIdleConns = 10
)
