package game

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisBalanceTracker stores balances in redis so they survive a server
// restart. Invoked only at connect time and at hand-resolution boundaries.
type RedisBalanceTracker struct {
	rdclient *redis.Client
}

func NewRedisBalanceTracker(redisURL string, redisPW string, redisDB int) *RedisBalanceTracker {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisBalanceTracker{
		rdclient: rdclient,
	}
}

func balanceKey(playerID string) string {
	return fmt.Sprintf("balance:%s", playerID)
}

func (r *RedisBalanceTracker) Load(playerID string) (int64, bool, error) {
	val, err := r.rdclient.Get(context.Background(), balanceKey(playerID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "Unable to load balance for player %s", playerID)
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "Corrupt balance value [%s] for player %s", val, playerID)
	}
	return balance, true, nil
}

func (r *RedisBalanceTracker) Save(playerID string, balance int64) error {
	err := r.rdclient.Set(context.Background(), balanceKey(playerID), balance, 0).Err()
	if err != nil {
		return errors.Wrapf(err, "Unable to save balance for player %s", playerID)
	}
	return nil
}

func (r *RedisBalanceTracker) Remove(playerID string) error {
	err := r.rdclient.Del(context.Background(), balanceKey(playerID)).Err()
	if err != nil {
		return errors.Wrapf(err, "Unable to remove balance for player %s", playerID)
	}
	return nil
}
