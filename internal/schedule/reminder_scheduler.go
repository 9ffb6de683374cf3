package schedule

// 班前提醒调度器：周期扫描各班次，给未投放的用户发延迟提醒消息

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"KaoQin/internal/service"
	"KaoQin/pkg/logger"
)

var (
	reminderOnce sync.Once
	reminderInst *ReminderScheduler
)

type ReminderScheduler struct {
	logger     *zap.Logger
	jobMu      sync.Mutex
	jobRunning bool
}

func GetReminderScheduler() *ReminderScheduler {
	reminderOnce.Do(func() {
		reminderInst = &ReminderScheduler{
			logger: logger.Logger,
		}
	})
	return reminderInst
}

// PlanToday 为今天的班次投放提醒，投放标记保证重复扫描不会重发
func (s *ReminderScheduler) PlanToday(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Reminder planning job already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	startTime := time.Now()

	if err := service.Reminder().PlanReminders(ctx); err != nil {
		return err
	}

	s.logger.Info("Reminder planning completed",
		zap.Duration("duration", time.Since(startTime)),
	)

	return nil
}
