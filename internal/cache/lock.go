package cache

import (
	"context"
	"fmt"
	"time"

	"KaoQin/storage/redis"
)

// 分布式锁，通过 SetNX 实现
// 打卡操作按 (user, date) 串行化，避免读改写竞争
const (
	lockPrefix = "lock"

	// ClockLockTTL 打卡锁超时，覆盖一次完整的读改写事务
	ClockLockTTL = 10 * time.Second
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}

// ClockLockKey (user, date) 粒度的打卡锁 key
func ClockLockKey(userID int64, date string) string {
	return fmt.Sprintf("clock:%d:%s", userID, date)
}
