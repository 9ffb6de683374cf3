package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"KaoQin/config"
	"KaoQin/internal/cache"
	"KaoQin/internal/model"
	"KaoQin/internal/queue"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/logger"
	"KaoQin/pkg/metrics"
	"KaoQin/pkg/sms"
	"KaoQin/pkg/snowflake"
	"KaoQin/storage/database"
	"KaoQin/utils"
)

type ReminderService struct{}

var (
	reminderService *ReminderService
	reminderOnce    sync.Once
)

func Reminder() *ReminderService {
	reminderOnce.Do(func() {
		reminderService = &ReminderService{}
	})

	return reminderService
}

// hasClockedIn 当日是否已有上班打卡记录
func (s *ReminderService) hasClockedIn(ctx context.Context, userID int64, date time.Time) (bool, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.WorkSegment{}).
		Joins("JOIN attendance_days ON attendance_days.id = work_segments.attendance_day_id").
		Where("attendance_days.user_id = ? AND attendance_days.date = ?", userID, date).
		Where("attendance_days.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SendClockReminder 给单个用户发送班前打卡提醒短信。
// 已打卡、离职、关闭提醒、月度限额命中都返回 SkipMessageError，
// 消费侧视为正常跳过不重试。
func (s *ReminderService) SendClockReminder(ctx context.Context, userID int64, date string, shiftID int64) error {
	var user model.User
	if err := database.DB().WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("user %d not found", userID)}
		}
		return err
	}

	if user.Status != model.UserStatusActive || !user.ClockInReminderEnabled {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("user %d inactive or reminder disabled", userID)}
	}
	if user.Phone == "" {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("user %d has no phone", userID)}
	}

	day, err := utils.ParseDate(date)
	if err != nil {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("invalid date %q", date)}
	}

	clockedIn, err := s.hasClockedIn(ctx, userID, day)
	if err != nil {
		return err
	}
	if clockedIn {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("user %d already clocked in on %s", userID, date)}
	}

	// 每人每月提醒短信有上限，超限静默跳过
	allowed, err := cache.IncrMonthlyReminder(ctx, day.Format("2006-01"), userID)
	if err != nil {
		logger.Logger.Warn("Failed to check monthly reminder limit",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	} else if !allowed {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordReminderSent(ctx, "limit_exceeded")
		}
		return &errors.SkipMessageError{Reason: fmt.Sprintf("user %d monthly reminder limit exceeded", userID)}
	}

	shift, err := User().GetShift(ctx, shiftID)
	if err != nil {
		return err
	}

	param, err := json.Marshal(map[string]string{
		"name":  user.Name,
		"start": shift.StartTime,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms template param: %w", err)
	}

	err = sms.SendSingle(ctx, user.Phone,
		config.Cfg.SMSSignName, config.Cfg.SMSTemplateCode, string(param))
	if err != nil {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordReminderSent(ctx, "failed")
		}
		return fmt.Errorf("failed to send clock reminder sms: %w", err)
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordReminderSent(ctx, "sent")
	}

	logger.Logger.Info("Clock reminder sent",
		zap.Int64("user_id", userID),
		zap.String("date", date),
		zap.Int64("shift_id", shiftID),
	)

	return nil
}

// PlanReminders 扫描全部班次，给今天还没投放过提醒的用户发延迟消息。
// scheduler 周期性调用，投放标记保证多次扫描不会重复
func (s *ReminderService) PlanReminders(ctx context.Context) error {
	now := utils.Now()
	date := utils.DateString(now)

	shifts, err := User().ListShifts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shifts: %w", err)
	}

	ahead := time.Duration(config.Cfg.ReminderAheadMinutes) * time.Minute

	for i := range shifts {
		shift := &shifts[i]

		start, err := shift.StartOn(now)
		if err != nil {
			logger.Logger.Error("Invalid shift start time",
				zap.Int64("shift_id", shift.ID),
				zap.String("start_time", shift.StartTime),
				zap.Error(err),
			)
			continue
		}

		remindAt := start.Add(-ahead)
		if !remindAt.After(now) {
			// 今天的提醒窗口已过
			continue
		}

		users, err := User().ListActiveByShift(ctx, shift.ID)
		if err != nil {
			logger.Logger.Error("Failed to list users for shift",
				zap.Int64("shift_id", shift.ID),
				zap.Error(err),
			)
			continue
		}

		userIDs := make([]int64, 0, len(users))
		for j := range users {
			scheduled, err := cache.IsReminderScheduled(ctx, date, users[j].ID)
			if err != nil {
				logger.Logger.Warn("Failed to check reminder scheduled flag",
					zap.Int64("user_id", users[j].ID),
					zap.Error(err),
				)
				continue
			}
			if scheduled {
				continue
			}
			userIDs = append(userIDs, users[j].ID)
		}

		if len(userIDs) == 0 {
			continue
		}

		batchSeq, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate batch ID: %w", err)
		}

		msg := model.ClockReminderMessage{
			BatchID:      fmt.Sprintf("reminder_%s_%d_%d", date, shift.ID, batchSeq),
			Date:         date,
			ShiftID:      shift.ID,
			ScheduledAt:  remindAt.Format(time.RFC3339),
			UserIDs:      userIDs,
			DelaySeconds: int(remindAt.Sub(now) / time.Second),
		}

		if err := queue.PublishClockReminder(msg); err != nil {
			logger.Logger.Error("Failed to publish reminder batch",
				zap.String("batch_id", msg.BatchID),
				zap.Error(err),
			)
			continue
		}

		for _, userID := range userIDs {
			if err := cache.MarkReminderScheduled(ctx, date, userID); err != nil {
				logger.Logger.Warn("Failed to mark reminder scheduled",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
		}

		logger.Logger.Info("Reminder batch planned",
			zap.String("batch_id", msg.BatchID),
			zap.Int64("shift_id", shift.ID),
			zap.Int("user_count", len(userIDs)),
			zap.Time("remind_at", remindAt),
		)
	}

	return nil
}
