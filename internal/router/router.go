package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"KaoQin/internal/handler"
	"KaoQin/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	h.Use(middleware.DeviceDetectMiddleware())

	h.GET("/healthz", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(200, map[string]string{"status": "ok"})
	})

	v1 := h.Group("/v1")

	attendance := v1.Group("/attendance")
	attendance.Use(middleware.AuthMiddleware())
	attendance.Use(middleware.GeneralRateLimitMiddleware())
	{
		// 打卡动作只允许桌面端，移动端直接拒绝
		clock := attendance.Group("", middleware.DesktopOnlyMiddleware(), middleware.ClockRateLimitMiddleware())
		{
			clock.POST("/clock-in", handler.ClockIn)
			clock.POST("/clock-out", handler.ClockOut)
			clock.POST("/start-break", handler.BreakStart)
			clock.POST("/end-break", handler.BreakEnd)
		}

		attendance.GET("/daily-report", handler.GetDailyReport)
		attendance.GET("/history", handler.GetHistory)
		attendance.GET("/monthly-summary", handler.GetMonthlySummary)

		// 补卡申请
		attendance.POST("/requests", middleware.CorrectionRateLimitMiddleware(), handler.CreateCorrection)
		attendance.GET("/requests", handler.ListCorrections)
		attendance.POST("/requests/action", handler.DecideCorrection)
	}
}
