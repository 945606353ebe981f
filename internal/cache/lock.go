package cache

import (
	"context"
	"fmt"
	"time"
)

// AcquireLock 以 SetNX 抢占互斥锁。Redis 未启用时直接放行，
// 此时并发控制完全依赖数据库条件更新。
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	return redisClient.SetNX(ctx, buildKey(key), 1, ttl).Result()
}

// ReleaseLock 释放互斥锁
func ReleaseLock(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Del(ctx, buildKey(key)).Err()
}

// CheckoutLockKey 单用户结算互斥锁键
func CheckoutLockKey(userID uint) string {
	return fmt.Sprintf("checkout:lock:%d", userID)
}

// CallbackDedupeKey 支付回调去重键
func CallbackDedupeKey(appTransID string) string {
	return fmt.Sprintf("payment:callback:%s", appTransID)
}
