package handler

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"

	"KaoQin/internal/middleware"
	"KaoQin/internal/model/dto"
	"KaoQin/internal/service"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/response"
)

// requestPublicID 从认证上下文解析当前用户的 public_id
func requestPublicID(ctx context.Context, c *app.RequestContext) (int64, error) {
	raw, ok := middleware.GetUserID(ctx, c)
	if !ok {
		return 0, errors.Unauthorized
	}
	return service.User().ResolvePublicID(raw)
}

// ClockIn 上班打卡
// POST /v1/attendance/clock-in
func ClockIn(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.ClockRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Attendance().ClockIn(ctx, publicID, req, middleware.GetDeviceType(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ClockOut 下班打卡
// POST /v1/attendance/clock-out
func ClockOut(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.ClockRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Attendance().ClockOut(ctx, publicID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// BreakStart 开始休息
// POST /v1/attendance/start-break
func BreakStart(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.ClockRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Attendance().BreakStart(ctx, publicID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// BreakEnd 结束休息
// POST /v1/attendance/end-break
func BreakEnd(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.ClockRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Attendance().BreakEnd(ctx, publicID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetDailyReport 查询单日考勤报表，日期缺省为当天
// GET /v1/attendance/daily-report
func GetDailyReport(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var query dto.DailyReportQuery
	if err := c.BindAndValidate(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	// 管理员可以查别人，普通员工只能查自己
	target := publicID
	if query.UserID > 0 && query.UserID != publicID {
		if !middleware.IsAdminRequest(ctx, c) {
			response.Error(ctx, c, errors.AdminRequired)
			return
		}
		target = query.UserID
	}

	result, err := service.Attendance().DailyReport(ctx, target, query.Date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetHistory 查询历史考勤记录
// GET /v1/attendance/history
func GetHistory(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var query dto.AttendanceHistoryQuery
	if err := c.BindAndValidate(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Attendance().History(ctx, publicID, query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
		"count": len(result),
	})
}

// GetMonthlySummary 查询月度考勤汇总
// GET /v1/attendance/monthly-summary
func GetMonthlySummary(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var query dto.SummaryQuery
	if err := c.BindAndValidate(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if query.Month < 1 || query.Month > 12 || query.Year < 2000 || query.Year > 2100 {
		response.Error(ctx, c, errors.InvalidMonth)
		return
	}
	month := fmt.Sprintf("%04d-%02d", query.Year, query.Month)

	// 管理员可以查别人，普通员工只能查自己
	target := publicID
	if query.UserID > 0 && query.UserID != publicID {
		if !middleware.IsAdminRequest(ctx, c) {
			response.Error(ctx, c, errors.AdminRequired)
			return
		}
		target = query.UserID
	}

	result, err := service.Summary().Monthly(ctx, target, month)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
