package token

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// IStoreConstrain restricts the generic option type to the store implementations.
type IStoreConstrain interface {
	InMemory | Redis
}

// Option is a function type that configures a token store.
type Option[T IStoreConstrain] func(*T)

// ApplyOptions applies the given options to the given store.
func ApplyOptions[T IStoreConstrain](store *T, options ...Option[T]) {
	for _, option := range options {
		option(store)
	}
}

// iGeneratable is implemented by stores that accept a custom token generator.
type iGeneratable interface {
	setGenerator(g Generator)
}

func (s *InMemory) setGenerator(g Generator) { s.generate = g }

func (s *Redis) setGenerator(g Generator) { s.generate = g }

// WithGenerator overrides the token value generator. Intended for tests that
// need deterministic tokens.
func WithGenerator[T IStoreConstrain](g Generator) Option[T] {
	return func(store *T) {
		if g == nil {
			return
		}

		if generatable, ok := any(store).(iGeneratable); ok {
			generatable.setGenerator(g)
		}
	}
}

// WithRedisClient sets the redis client to use.
func WithRedisClient(client *redis.Client) Option[Redis] {
	return func(store *Redis) {
		store.rdb = client
	}
}

// WithSessionID scopes the redis keys to a browsing session.
func WithSessionID(sessionID string) Option[Redis] {
	return func(store *Redis) {
		store.sessionID = sessionID
	}
}

// WithTTL overrides how long tokens survive without activity.
func WithTTL(ttl time.Duration) Option[Redis] {
	return func(store *Redis) {
		if ttl > 0 {
			store.ttl = ttl
		}
	}
}

// WithSerializer overrides the codec used for token records.
func WithSerializer(name string) Option[Redis] {
	return func(store *Redis) {
		store.serializerName = name
	}
}
