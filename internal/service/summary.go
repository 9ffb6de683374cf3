package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"KaoQin/internal/cache"
	"KaoQin/internal/model"
	"KaoQin/internal/model/dto"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/logger"
	"KaoQin/storage/database"
	"KaoQin/utils"
)

type SummaryService struct{}

var (
	summaryService *SummaryService
	summaryOnce    sync.Once
)

func Summary() *SummaryService {
	summaryOnce.Do(func() {
		summaryService = &SummaryService{}
	})

	return summaryService
}

// monthRange 返回月份 [first, next) 区间，month 格式 YYYY-MM
func monthRange(month string) (time.Time, time.Time, error) {
	first, err := time.ParseInLocation("2006-01", month, utils.Location())
	if err != nil {
		return time.Time{}, time.Time{}, errors.InvalidMonth
	}
	return first, first.AddDate(0, 1, 0), nil
}

// Monthly 月度考勤汇总
func (s *SummaryService) Monthly(ctx context.Context, publicID int64, month string) (*dto.MonthlySummary, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	first, next, err := monthRange(month)
	if err != nil {
		return nil, err
	}

	if summary, hit, cacheErr := cache.GetMonthlySummary(ctx, user.ID, month); cacheErr == nil && hit && summary != nil {
		return summary, nil
	}

	db := database.DB().WithContext(ctx)

	var days []model.AttendanceDay
	err = db.
		Preload("WorkSegments", func(db *gorm.DB) *gorm.DB {
			return db.Order("clock_in ASC")
		}).
		Preload("BreakSegments", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_at ASC")
		}).
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, first, next).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, err
	}

	var leaves []model.LeaveRequest
	err = db.
		Where("user_id = ? AND date >= ? AND date < ? AND status = ?",
			user.ID, first, next, model.LeaveStatusApproved).
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}

	var wfhs []model.WorkFromHomeRequest
	err = db.
		Where("user_id = ? AND date >= ? AND date < ? AND status = ?",
			user.ID, first, next, model.LeaveStatusApproved).
		Find(&wfhs).Error
	if err != nil {
		return nil, err
	}

	var holidays []model.Holiday
	err = db.
		Where("date >= ? AND date < ?", first, next).
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}

	summary := model.BuildMonthlySummary(user.ID, month, first, next, utils.Now(), days, leaves, wfhs, holidays)

	if err := cache.SetMonthlySummary(ctx, user.ID, month, summary); err != nil {
		logger.Logger.Warn("Failed to cache monthly summary",
			zap.Int64("user_id", user.ID),
			zap.String("month", month),
			zap.Error(err),
		)
	}

	return summary, nil
}
