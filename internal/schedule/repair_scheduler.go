package schedule

// 遗忘会话修复调度器：每天凌晨扫描前一天仍未下班的工作段并记缺勤

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"KaoQin/internal/cache"
	"KaoQin/internal/service"
	"KaoQin/pkg/logger"
	"KaoQin/utils"
)

var (
	repairOnce sync.Once
	repairInst *RepairScheduler
)

type RepairScheduler struct {
	logger     *zap.Logger
	jobMu      sync.Mutex
	jobRunning bool
}

func GetRepairScheduler() *RepairScheduler {
	repairOnce.Do(func() {
		repairInst = &RepairScheduler{
			logger: logger.Logger,
		}
	})
	return repairInst
}

// RepairYesterday 修复昨天的遗忘会话。
// 修复本身幂等，redis 标记只用于跳过已经跑完的日期
func (s *RepairScheduler) RepairYesterday(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Repair job already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	yesterday := utils.DayOf(utils.Now()).AddDate(0, 0, -1)
	dateStr := utils.DateString(yesterday)

	done, err := cache.IsRepairDone(ctx, dateStr)
	if err != nil {
		s.logger.Warn("Failed to check repair done flag",
			zap.String("date", dateStr),
			zap.Error(err),
		)
		// 检查失败继续跑，修复是幂等的
	} else if done {
		s.logger.Debug("Repair already done for date, skipping",
			zap.String("date", dateStr),
		)
		return nil
	}

	startTime := time.Now()

	repaired, err := service.Attendance().RepairForgottenSessions(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to repair forgotten sessions for %s: %w", dateStr, err)
	}

	if err := cache.MarkRepairDone(ctx, dateStr); err != nil {
		s.logger.Warn("Failed to mark repair done",
			zap.String("date", dateStr),
			zap.Error(err),
		)
	}

	s.logger.Info("Forgotten session repair completed",
		zap.String("date", dateStr),
		zap.Int64("repaired_count", repaired),
		zap.Duration("duration", time.Since(startTime)),
	)

	return nil
}
