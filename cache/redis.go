package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, for deployments running more than
// one instance of the service. Each group tag is materialized as a Redis SET
// of member keys; invalidating a group deletes the members and the set in
// one pipeline.
type RedisCache struct {
	cli *redis.Client
	ttl time.Duration
}

// tagSetKey namespaces the per-group membership sets away from value keys.
func tagSetKey(tag string) string {
	return "cachetag:" + tag
}

// NewRedisCache connects to Redis at the given URL. A zero ttl stores
// entries without expiry.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	cli := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return &RedisCache{cli: cli, ttl: ttl}, nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error { return c.cli.Close() }

// Get returns the payload stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key and records its group memberships.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, tags []string) error {
	pipe := c.cli.TxPipeline()
	pipe.Set(ctx, key, value, c.ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagSetKey(tag), key)
		if c.ttl > 0 {
			// Keep the membership set alive at least as long as its newest
			// member; stale members left after value expiry only cost a
			// harmless DEL on the next invalidation.
			pipe.Expire(ctx, tagSetKey(tag), c.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// invalidateScript drops a group's member keys and the membership set in
// one atomic step. Enumerating members and deleting them as two separate
// commands would leave a window where a concurrent Set tags a fresh entry
// into the already-enumerated set; deleting the set afterwards would then
// orphan that entry's value key where no later invalidation could reach it.
var invalidateScript = redis.NewScript(`
local members = redis.call('SMEMBERS', KEYS[1])
for i = 1, #members do
	redis.call('DEL', members[i])
end
redis.call('DEL', KEYS[1])
return #members
`)

// InvalidateGroup deletes every member of the group and the set itself.
func (c *RedisCache) InvalidateGroup(ctx context.Context, tag string) error {
	return invalidateScript.Run(ctx, c.cli, []string{tagSetKey(tag)}).Err()
}

var _ Cache = (*RedisCache)(nil)
