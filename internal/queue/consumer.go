package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"KaoQin/internal/cache"
	"KaoQin/internal/model"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/logger"
	"KaoQin/storage/mq"
)

// ReminderSender worker 启动时注入，消费侧不直接依赖 service 包
type ReminderSender interface {
	SendClockReminder(ctx context.Context, userID int64, date string, shiftID int64) error
}

var reminderSender ReminderSender

// SetReminderSender 设置提醒发送服务（在 worker 启动时调用）
func SetReminderSender(s ReminderSender) {
	reminderSender = s
}

// StartClockReminderConsumer 启动班前提醒消费者
func StartClockReminderConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.ClockReminderMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal clock reminder message: %w", err)
		}

		// 幂等性检查：SETNX 原子标记消息正在处理
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，不阻塞业务，可能重复
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("batch_id", msg.BatchID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing clock reminder batch",
			zap.String("message_id", msg.MessageID),
			zap.String("batch_id", msg.BatchID),
			zap.Int("user_count", len(msg.UserIDs)),
		)

		if reminderSender == nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("reminder sender not initialized")
		}

		var failed int
		for _, userID := range msg.UserIDs {
			if err := reminderSender.SendClockReminder(ctx, userID, msg.Date, msg.ShiftID); err != nil {
				if errors.IsSkipMessageError(err) {
					// 月度限额命中或用户已打卡，单个用户跳过不影响整批
					continue
				}
				failed++
				logger.Logger.Error("Failed to send clock reminder",
					zap.Int64("user_id", userID),
					zap.String("date", msg.Date),
					zap.Error(err),
				)
			}
		}

		if failed > 0 {
			// 整批重试，已发送成功的由月度计数/已打卡检查挡住
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to send %d of %d reminders", failed, len(msg.UserIDs))
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.ReminderQueue,
		ConsumerTag:   "clock_reminder_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartEventAuditConsumer 启动事件审计消费者，把事件总线的消息落日志
func StartEventAuditConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var event model.AttendanceEventMessage
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal attendance event: %w", err)
		}

		logger.Logger.Info("Attendance event",
			zap.String("event_type", event.EventType),
			zap.String("event_key", event.EventKey),
			zap.String("occurred_at", event.OccurredAt),
			zap.Any("payload", event.Payload),
		)

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.EventAuditQueue,
		ConsumerTag:   "attendance_event_audit_consumer",
		PrefetchCount: 20,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		consumer func(context.Context) error
		name     string
	}{
		{StartClockReminderConsumer, "clock_reminder"},
		{StartEventAuditConsumer, "event_audit"},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()

	logger.Logger.Info("All consumers stopped")
}
