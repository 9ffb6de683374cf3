package cache

import (
	"context"
	"fmt"
	"time"

	"KaoQin/internal/model/dto"
)

// 报表类读路径的缓存，打卡等写操作成功后按 key 失效

var (
	// 单日考勤视图缓存
	dayViewCache = NewProtectedCache("report:day", 10*time.Minute)

	// 月度汇总缓存，月份封账前数据仍会变化，TTL 取短
	monthlySummaryCache = NewProtectedCache("report:monthly", 30*time.Minute)
)

func dayViewKey(userID int64, date string) string {
	return fmt.Sprintf("%d:%s", userID, date)
}

func monthlyKey(userID int64, month string) string {
	return fmt.Sprintf("%d:%s", userID, month)
}

// GetDayView 读单日视图缓存
func GetDayView(ctx context.Context, userID int64, date string) (*dto.AttendanceDayView, bool, error) {
	var view dto.AttendanceDayView
	hit, err := dayViewCache.Get(ctx, dayViewKey(userID, date), &view)
	if err != nil || !hit {
		return nil, false, err
	}
	if view.Date == "" {
		return nil, true, nil // 空值命中
	}
	return &view, true, nil
}

// SetDayView 写单日视图缓存
func SetDayView(ctx context.Context, userID int64, date string, view *dto.AttendanceDayView) error {
	if view == nil {
		return dayViewCache.Set(ctx, dayViewKey(userID, date), nil)
	}
	return dayViewCache.Set(ctx, dayViewKey(userID, date), view)
}

// InvalidateDayView 打卡/补卡成功后失效
func InvalidateDayView(ctx context.Context, userID int64, date string) error {
	return dayViewCache.Delete(ctx, dayViewKey(userID, date))
}

// GetMonthlySummary 读月度汇总缓存
func GetMonthlySummary(ctx context.Context, userID int64, month string) (*dto.MonthlySummary, bool, error) {
	var summary dto.MonthlySummary
	hit, err := monthlySummaryCache.Get(ctx, monthlyKey(userID, month), &summary)
	if err != nil || !hit {
		return nil, false, err
	}
	if summary.Month == "" {
		return nil, true, nil
	}
	return &summary, true, nil
}

// SetMonthlySummary 写月度汇总缓存
func SetMonthlySummary(ctx context.Context, userID int64, month string, summary *dto.MonthlySummary) error {
	if summary == nil {
		return monthlySummaryCache.Set(ctx, monthlyKey(userID, month), nil)
	}
	return monthlySummaryCache.Set(ctx, monthlyKey(userID, month), summary)
}

// InvalidateMonthlySummary 当月数据变化后失效
func InvalidateMonthlySummary(ctx context.Context, userID int64, month string) error {
	return monthlySummaryCache.Delete(ctx, monthlyKey(userID, month))
}
