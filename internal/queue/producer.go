package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"KaoQin/internal/model"
	"KaoQin/pkg/logger"
	"KaoQin/pkg/snowflake"
	"KaoQin/storage/mq"
	"KaoQin/utils"
)

// PublishClockReminder 发布班前打卡提醒（延迟消息）
func PublishClockReminder(msg model.ClockReminderMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("batch_id", msg.BatchID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("clock_reminder_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second

	// RabbitMQ 延迟消息限制在 24 小时内，更远的由 scheduler 扫描
	if delay > 24*time.Hour {
		return fmt.Errorf("delay %v exceeds 24 hours limit, use scheduled task instead", delay)
	}

	err := mq.PublishDelayedMessage(
		mq.ReminderDelayedExchange,
		mq.ReminderRoutingKey,
		delay,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish clock reminder message",
			zap.String("batch_id", msg.BatchID),
			zap.Int("user_count", len(msg.UserIDs)),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published clock reminder message",
		zap.String("message_id", msg.MessageID),
		zap.String("batch_id", msg.BatchID),
		zap.Int64("shift_id", msg.ShiftID),
		zap.Int("user_count", len(msg.UserIDs)),
		zap.Duration("delay", delay),
	)

	return nil
}

// PublishCorrectionDecided 发布补卡审批结果，worker 消费后通知申请人
func PublishCorrectionDecided(msg model.CorrectionDecidedMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("request_id", msg.RequestID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("correction_decided_%d", id)
	}

	err := mq.PublishMessage(
		mq.AttendanceEventExchange,
		"attendance.correction.decided",
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish correction decided message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("request_id", msg.RequestID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published correction decided message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("request_id", msg.RequestID),
		zap.Int64("user_id", msg.UserID),
		zap.String("status", msg.Status),
	)

	return nil
}

// PublishClockEvent 发布打卡事件（事件总线）
func PublishClockEvent(eventType string, userID int64, date string, payload map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["user_id"] = userID
	payload["date"] = date

	event := model.AttendanceEventMessage{
		EventKey:   fmt.Sprintf("attendance.%s", eventType),
		EventType:  eventType,
		OccurredAt: utils.Now().Format(time.RFC3339),
		Payload:    payload,
	}

	err := mq.PublishMessage(
		mq.AttendanceEventExchange,
		event.EventKey,
		event,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish attendance event",
			zap.String("event_type", eventType),
			zap.Int64("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
		return err
	}

	return nil
}
