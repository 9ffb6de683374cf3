package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"KaoQin/config"
	"KaoQin/internal/schedule"
	"KaoQin/pkg/logger"
	"KaoQin/pkg/metrics"
	"KaoQin/pkg/snowflake"
	"KaoQin/storage"
	"KaoQin/utils"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := utils.InitLocation(config.Cfg.OrgTimezone); err != nil {
		logger.Logger.Fatal("Failed to load org timezone", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 考虑与 worker 和 server 作区分
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "kaoqin-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runRepairLoop(ctx)
	go runReminderLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runRepairLoop 每天凌晨执行一次遗忘会话修复
// 当前实现：每天公司时区 00:10 触发一次
func runRepairLoop(ctx context.Context) {
	s := schedule.GetRepairScheduler()

	// 在 development 环境下，为了方便本地调试，改为每 1 分钟执行一次
	if config.Cfg.Environment == "development" {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		logger.Logger.Info("Repair loop running in development mode with 1m interval")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				if err := s.RepairYesterday(runCtx); err != nil {
					logger.Logger.Error("Repair run failed (development interval)", zap.Error(err))
				}
				cancel()
			}
		}
	}

	for {
		// 计算下一次运行时间（今天/明天的 00:10，公司时区）
		now := utils.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 10, 0, 0, utils.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next repair run",
			zap.Time("now", now),
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := s.RepairYesterday(runCtx); err != nil {
				logger.Logger.Error("Repair run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runReminderLoop 周期性投放班前打卡提醒
// 当前实现：每 5 分钟扫描一次，投放标记保证不重发
func runReminderLoop(ctx context.Context) {
	s := schedule.GetReminderScheduler()

	interval := 5 * time.Minute
	if config.Cfg.Environment == "development" {
		interval = 1 * time.Minute
		logger.Logger.Info("Reminder loop running in development mode with 1m interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := s.PlanToday(runCtx); err != nil {
				logger.Logger.Error("Reminder planning run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
