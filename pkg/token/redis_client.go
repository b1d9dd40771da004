package token

import (
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/internal/sentinel"
)

// NewRedisClient builds a redis client tuned for the token store workload:
// many short reads, occasional writes, nothing latency critical enough to
// justify failing fast.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "addr")
	}

	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   constants.RedisClientMaxRetries,
		DialTimeout:  constants.RedisDialTimeout,
		ReadTimeout:  constants.RedisClientReadTimeout,
		WriteTimeout: constants.RedisClientWriteTimeout,
		PoolTimeout:  constants.RedisClientPoolTimeout,
		PoolSize:     constants.RedisClientPoolSize,
		MinIdleConns: constants.RedisClientMinIdleConns,
	}), nil
}
