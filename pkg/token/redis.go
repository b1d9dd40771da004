package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyp3rd/ewrap"
	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/internal/libs/serializer"
	"github.com/hyp3rd/storefront/internal/sentinel"
)

// Redis is a token store backed by a redis instance, for deployments where
// the storefront process is stateless and guest identity must survive process
// restarts. Keys are scoped per browsing session and expire together with it.
type Redis struct {
	rdb            *redis.Client
	sessionID      string
	ttl            time.Duration
	serializerName string
	ser            serializer.ISerializer
	generate       Generator
}

// record is the persisted token envelope.
type record struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRedis creates a redis-backed token store with the given options.
func NewRedis(opts ...Option[Redis]) (*Redis, error) {
	store := &Redis{
		ttl:            constants.RedisTokenTTL,
		serializerName: "msgpack",
		generate:       uuid.NewString,
	}
	ApplyOptions(store, opts...)

	if store.rdb == nil {
		return nil, sentinel.ErrNilClient
	}

	if strings.TrimSpace(store.sessionID) == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "sessionID")
	}

	ser, err := serializer.New(store.serializerName)
	if err != nil {
		return nil, err
	}

	store.ser = ser

	return store, nil
}

// key builds the redis key for a token kind.
func (s *Redis) key(kind Kind) string {
	return constants.RedisTokenKeyPrefix + ":" + s.sessionID + ":" + kind.String()
}

// Get returns the token for the kind if one exists.
func (s *Redis) Get(ctx context.Context, kind Kind) (string, bool, error) {
	data, err := s.rdb.Get(ctx, s.key(kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, ewrap.Wrap(err, "get token record")
	}

	var rec record

	err = s.ser.Unmarshal(data, &rec)
	if err != nil {
		return "", false, err
	}

	return rec.Token, true, nil
}

// GetOrCreate returns the existing token or mints a new one. Creation uses
// SETNX so two racing processes converge on a single value: the loser of the
// race discards its candidate and reads back the winner's.
func (s *Redis) GetOrCreate(ctx context.Context, kind Kind) (string, error) {
	candidate := record{Token: s.generate(), CreatedAt: time.Now().UTC()}

	data, err := s.ser.Marshal(&candidate)
	if err != nil {
		return "", err
	}

	created, err := s.rdb.SetNX(ctx, s.key(kind), data, s.ttl).Result()
	if err != nil {
		return "", ewrap.Wrap(err, "setnx token record")
	}

	if created {
		return candidate.Token, nil
	}

	tok, ok, err := s.Get(ctx, kind)
	if err != nil {
		return "", err
	}

	if !ok {
		// Key expired between SETNX and Get; extremely unlikely with session TTLs.
		return s.GetOrCreate(ctx, kind)
	}

	return tok, nil
}
