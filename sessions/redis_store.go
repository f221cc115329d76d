package sessions

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "authclient"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps values in Redis under "authclient:<scope>:<key>" with a TTL, so a
// persisted session outlives a restart but not its configured lifetime.
type RedisStore struct {
	client redis.Cmdable
	scope  string
	ttl    time.Duration
}

// NewRedisStore returns a store namespaced by scope. A zero ttl keeps values without expiry.
func NewRedisStore(client redis.Cmdable, scope string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, scope: scope, ttl: ttl}
}

func (r *RedisStore) key(key string) string {
	return redisKeyPrefix + ":" + r.scope + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[RedisStore.Get] %s", r.key(key))
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(r.client.Set(ctx, r.key(key), value, r.ttl).Err(), "[RedisStore.Set] %s", r.key(key))
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(r.client.Del(ctx, r.key(key)).Err(), "[RedisStore.Delete] %s", r.key(key))
}
