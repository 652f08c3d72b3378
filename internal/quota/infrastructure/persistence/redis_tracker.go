package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/reelgate/internal/quota/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

const quotaKeyPrefix = "reelgate:quota:"

// keyRetention keeps a day's counter around after the day ends so late
// readers near midnight still see it.
const keyRetention = 24 * time.Hour

// incrementIfBelowScript checks and increments in one server-side step.
// Returns the new total, or -(current+1) when the ceiling is reached.
var incrementIfBelowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return -(current + 1)
end
local total = redis.call('INCR', KEYS[1])
redis.call('EXPIREAT', KEYS[1], ARGV[2])
return total
`)

// RedisTracker stores counters as plain integer keys with an expiry a day
// past the end of the counted day.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker creates a tracker on an existing client.
func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func (t *RedisTracker) ConsumedToday(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	views, err := t.client.Get(ctx, quotaKey(userID, day)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get quota: %w", err)
	}
	return views, nil
}

func (t *RedisTracker) Increment(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, err
	}
	key := quotaKey(userID, day)
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, expiry(day))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment quota: %w", err)
	}
	return int(incr.Val()), nil
}

func (t *RedisTracker) IncrementIfBelow(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (int, bool, error) {
	if err := domain.ValidateKey(userID, day); err != nil {
		return 0, false, err
	}
	if ceiling <= 0 {
		views, err := t.ConsumedToday(ctx, userID, day)
		return views, false, err
	}
	result, err := incrementIfBelowScript.Run(ctx, t.client,
		[]string{quotaKey(userID, day)},
		ceiling, expiry(day).Unix(),
	).Int64()
	if err != nil {
		return 0, false, fmt.Errorf("increment quota: %w", err)
	}
	if result < 0 {
		return int(-result - 1), false, nil
	}
	return int(result), true, nil
}

// Ping checks connectivity to Redis.
func (t *RedisTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func quotaKey(userID sharedDomain.UserID, day sharedDomain.Day) string {
	return quotaKeyPrefix + userID.String() + ":" + day.String()
}

func expiry(day sharedDomain.Day) time.Time {
	return day.End().Add(keyRetention)
}

var _ domain.Tracker = (*RedisTracker)(nil)
