// Package redis backs shared state with Redis for multi-instance deployments.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces cooldown keys
const KeyPrefix = "cooldown:"

// acquireScript sets the key to now (ms) unless it holds a time less than
// window old. The key expires after window so stale entries do not pile up.
var acquireScript = goredis.NewScript(`
local last = redis.call('GET', KEYS[1])
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
if last and (now - tonumber(last)) < window then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// CooldownStore implements alert.CooldownStore on Redis
type CooldownStore struct {
	client *goredis.Client
	prefix string
}

// NewClient creates a Redis client
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewCooldownStore creates a store using client
func NewCooldownStore(client *goredis.Client) *CooldownStore {
	return &CooldownStore{client: client, prefix: KeyPrefix}
}

// Acquire runs the check-and-set script
func (s *CooldownStore) Acquire(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}
	res, err := acquireScript.Run(ctx, s.client, []string{s.prefix + key}, now.UnixMilli(), windowMs).Int()
	if err != nil {
		return false, fmt.Errorf("acquire cooldown %s: %w", key, err)
	}
	return res == 1, nil
}

// Record stores at for key without expiry
func (s *CooldownStore) Record(ctx context.Context, key string, at time.Time) error {
	if err := s.client.Set(ctx, s.prefix+key, strconv.FormatInt(at.UnixMilli(), 10), 0).Err(); err != nil {
		return fmt.Errorf("record cooldown %s: %w", key, err)
	}
	return nil
}

// Reset deletes keys, or every prefixed key when none are given
func (s *CooldownStore) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return s.resetAll(ctx)
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("reset cooldowns: %w", err)
	}
	return nil
}

func (s *CooldownStore) resetAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("reset cooldowns: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cooldowns: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("reset cooldowns: %w", err)
		}
	}
	return nil
}

// Ping checks the connection
func (s *CooldownStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
