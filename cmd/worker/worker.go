package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"KaoQin/config"
	"KaoQin/internal/queue"
	"KaoQin/internal/service"
	"KaoQin/pkg/logger"
	"KaoQin/pkg/metrics"
	"KaoQin/pkg/sms"
	"KaoQin/pkg/snowflake"
	"KaoQin/storage"
	"KaoQin/utils"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := utils.InitLocation(config.Cfg.OrgTimezone); err != nil {
		logger.Logger.Fatal("Failed to load org timezone", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS service", zap.Error(err))
		logger.Logger.Info("SMS service will be disabled, reminder SMS may not work")
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
	}

	// 注入提醒发送服务，消费侧不直接依赖 service 包
	queue.SetReminderSender(service.Reminder())

	logger.Logger.Info("Worker service starting",
		zap.String("service", "kaoqin-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
