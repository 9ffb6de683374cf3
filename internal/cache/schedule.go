package cache

import (
	"context"
	"fmt"
	"time"

	"KaoQin/config"
	"KaoQin/storage/redis"
)

const (
	// 用于存储提醒投放状态，扫描重跑时快速跳过
	reminderScheduledPrefix = "reminder:scheduled"
	repairDonePrefix        = "repair:done"
	messageProcessedPrefix  = "message:processed"
	reminderMonthlyPrefix   = "reminder:monthly" // 月度提醒限制

	scheduledTTL = 24 * time.Hour
	processedTTL = 48 * time.Hour
)

// IsReminderScheduled 检查指定日期的班前提醒是否已投放
func IsReminderScheduled(ctx context.Context, date string, userID int64) (bool, error) {
	key := redis.Key(reminderScheduledPrefix, date, fmt.Sprintf("%d", userID))
	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check reminder scheduled status: %w", err)
	}
	return result > 0, nil
}

// MarkReminderScheduled 标记指定日期的班前提醒已投放
func MarkReminderScheduled(ctx context.Context, date string, userID int64) error {
	key := redis.Key(reminderScheduledPrefix, date, fmt.Sprintf("%d", userID))
	return redis.Client().Set(ctx, key, "1", scheduledTTL).Err()
}

// UnmarkReminderScheduled 清除投放标记（设置更新或重试时）
func UnmarkReminderScheduled(ctx context.Context, date string, userID int64) error {
	key := redis.Key(reminderScheduledPrefix, date, fmt.Sprintf("%d", userID))
	return redis.Client().Del(ctx, key).Err()
}

// IsRepairDone 检查某考勤日的遗忘会话修复是否已跑过
// 修复本身幂等，这只是扫描任务的快速跳过
func IsRepairDone(ctx context.Context, date string) (bool, error) {
	key := redis.Key(repairDonePrefix, date)
	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check repair status: %w", err)
	}
	return result > 0, nil
}

// MarkRepairDone 标记某考勤日的修复已完成
func MarkRepairDone(ctx context.Context, date string) error {
	key := redis.Key(repairDonePrefix, date)
	return redis.Client().Set(ctx, key, "1", processedTTL).Err()
}

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（使用 SETNX）
// 返回 true 表示成功标记（首次处理），false 表示已被标记（重复消息或正在处理）
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// MarkMessageProcessed 处理完成后标记消息已处理（延长 TTL）
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "done", ttl).Err()
}

// UnmarkMessageProcessing 取消消息处理标记（处理失败时调用，允许重试）
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// IncrMonthlyReminder 月度提醒计数，超限返回 false
func IncrMonthlyReminder(ctx context.Context, month string, userID int64) (bool, error) {
	key := redis.Key(reminderMonthlyPrefix, month, fmt.Sprintf("%d", userID))

	count, err := redis.Client().Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to incr monthly reminder counter: %w", err)
	}

	if count == 1 {
		// 首次计数时设置过期，到下月初自动清零
		redis.Client().Expire(ctx, key, 32*24*time.Hour)
	}

	return count <= int64(config.Cfg.MonthlyReminderLimit), nil
}
