package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"KaoQin/config"
	"KaoQin/internal/cache"
	"KaoQin/internal/model"
	"KaoQin/internal/model/dto"
	"KaoQin/internal/queue"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/logger"
	"KaoQin/pkg/metrics"
	"KaoQin/storage/database"
	"KaoQin/utils"
)

type AttendanceService struct{}

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		attendanceService = &AttendanceService{}
	})

	return attendanceService
}

// clockRules 规则统一由配置构建，模型层不读配置
func clockRules() model.ClockRules {
	return model.ClockRules{
		MinWorkSeconds:       int64(config.Cfg.MinWorkSeconds),
		MinProductiveSeconds: int64(config.Cfg.MinProductiveSeconds),
		BreakReasonThreshold: int64(config.Cfg.BreakReasonThreshold),
		ReasonMinLength:      config.Cfg.ReasonMinLength,
	}
}

// loadDay 加载带全部分段的考勤日记录，不存在返回 nil
func (s *AttendanceService) loadDay(tx *gorm.DB, userID int64, date time.Time) (*model.AttendanceDay, error) {
	var day model.AttendanceDay
	err := tx.
		Preload("WorkSegments", func(db *gorm.DB) *gorm.DB {
			return db.Order("clock_in ASC")
		}).
		Preload("BreakSegments", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_at ASC")
		}).
		Where("user_id = ? AND date = ?", userID, date).
		First(&day).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &day, nil
}

// loadOrCreateDay 加载或建立当日考勤记录
func (s *AttendanceService) loadOrCreateDay(tx *gorm.DB, userID int64, date time.Time, shiftID int64) (*model.AttendanceDay, error) {
	day, err := s.loadDay(tx, userID, date)
	if err != nil {
		return nil, err
	}
	if day != nil {
		return day, nil
	}

	day = &model.AttendanceDay{
		UserID:  userID,
		Date:    utils.DayOf(date),
		ShiftID: shiftID,
		Status:  model.AttendanceStatusAbsent,
	}
	if err := tx.Create(day).Error; err != nil {
		return nil, err
	}

	return day, nil
}

// saveDay 保存考勤日及其全部分段
func (s *AttendanceService) saveDay(tx *gorm.DB, day *model.AttendanceDay) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(day).Error
}

// repairDay 对单条记录执行遗忘会话修复并落库，返回是否发生修复
func (s *AttendanceService) repairDay(tx *gorm.DB, day *model.AttendanceDay) (bool, error) {
	if day == nil || !day.RepairForgottenSession() {
		return false, nil
	}

	// 被丢弃的分段直接删掉，剩下的随 day 一起保存
	if err := tx.Where("attendance_day_id = ? AND clock_out IS NULL", day.ID).
		Delete(&model.WorkSegment{}).Error; err != nil {
		return false, err
	}
	if err := tx.Where("attendance_day_id = ? AND end_at IS NULL", day.ID).
		Delete(&model.BreakSegment{}).Error; err != nil {
		return false, err
	}

	if err := s.saveDay(tx, day); err != nil {
		return false, err
	}

	return true, nil
}

// repairPreviousDay 打卡前先把前一日可能遗留的未闭合段修复掉
func (s *AttendanceService) repairPreviousDay(tx *gorm.DB, userID int64, now time.Time) error {
	prevDate := utils.DayOf(now).AddDate(0, 0, -1)

	day, err := s.loadDay(tx, userID, prevDate)
	if err != nil {
		return err
	}

	repaired, err := s.repairDay(tx, day)
	if err != nil {
		return err
	}

	if repaired {
		logger.Logger.Info("Repaired forgotten session",
			zap.Int64("user_id", userID),
			zap.String("date", utils.DateString(prevDate)),
		)
		if m := metrics.GetMetrics(); m != nil {
			m.RecordForgottenRepaired(context.Background(), 1)
		}
	}

	return nil
}

// withClockLock 打卡操作按 (user, date) 串行化
func (s *AttendanceService) withClockLock(ctx context.Context, userID int64, date string, fn func() error) error {
	lockKey := cache.ClockLockKey(userID, date)

	locked, err := cache.TryLock(ctx, lockKey, cache.ClockLockTTL)
	if err != nil {
		return err
	}
	if !locked {
		return errors.OperationInProgress
	}
	defer cache.Unlock(ctx, lockKey)

	return fn()
}

// invalidateReports 打卡成功后失效读缓存
func (s *AttendanceService) invalidateReports(ctx context.Context, userID int64, now time.Time) {
	date := utils.DateString(now)
	month := now.In(utils.Location()).Format("2006-01")

	if err := cache.InvalidateDayView(ctx, userID, date); err != nil {
		logger.Logger.Warn("Failed to invalidate day view cache",
			zap.Int64("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
	if err := cache.InvalidateMonthlySummary(ctx, userID, month); err != nil {
		logger.Logger.Warn("Failed to invalidate monthly summary cache",
			zap.Int64("user_id", userID),
			zap.String("month", month),
			zap.Error(err),
		)
	}
}

// ClockIn 上班打卡
func (s *AttendanceService) ClockIn(ctx context.Context, publicID int64, req dto.ClockRequest, device model.DeviceType) (*dto.ClockInResponse, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	shift, err := User().GetShift(ctx, user.ShiftID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	var late bool
	var day *model.AttendanceDay

	err = s.withClockLock(ctx, user.ID, utils.DateString(now), func() error {
		return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repairPreviousDay(tx, user.ID, now); err != nil {
				return err
			}

			day, err = s.loadOrCreateDay(tx, user.ID, now, shift.ID)
			if err != nil {
				return err
			}

			late, err = day.ApplyClockIn(shift, now, req.Reason, req.Location, device, clockRules())
			if err != nil {
				return err
			}

			return s.saveDay(tx, day)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, user.ID, now)

	if m := metrics.GetMetrics(); m != nil {
		if late {
			m.RecordLateClockIn(ctx)
		}
	}

	if err := queue.PublishClockEvent("clock_in", user.ID, utils.DateString(now), map[string]interface{}{
		"late_in": late,
	}); err != nil {
		logger.Logger.Warn("Failed to publish clock-in event", zap.Error(err))
	}

	return &dto.ClockInResponse{
		ClockIn:        now,
		Date:           utils.DateString(now),
		Status:         string(day.Status),
		LateIn:         late,
		ReasonRequired: late,
		Attendance:     buildDayView(day, now),
	}, nil
}

// ClockOut 下班打卡
func (s *AttendanceService) ClockOut(ctx context.Context, publicID int64, req dto.ClockRequest) (*dto.ClockOutResponse, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	var result *model.ClockOutResult

	err = s.withClockLock(ctx, user.ID, utils.DateString(now), func() error {
		return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			day, err := s.loadDay(tx, user.ID, utils.DayOf(now))
			if err != nil {
				return err
			}
			if day == nil {
				return errors.NoOpenSegment
			}

			result, err = day.ApplyClockOut(now, req.Reason, req.Location, clockRules())
			if err != nil {
				return err
			}

			return s.saveDay(tx, day)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, user.ID, now)

	if m := metrics.GetMetrics(); m != nil {
		if result.IsEarly {
			m.RecordEarlyClockOut(ctx)
		}
	}

	if err := queue.PublishClockEvent("clock_out", user.ID, utils.DateString(now), map[string]interface{}{
		"early_out":           result.IsEarly,
		"duration":            result.SegmentDuration,
		"productive_duration": result.ProductiveDuration,
	}); err != nil {
		logger.Logger.Warn("Failed to publish clock-out event", zap.Error(err))
	}

	return &dto.ClockOutResponse{
		ClockOut:           now,
		Date:               utils.DateString(now),
		Duration:           utils.FormatDuration(result.SegmentDuration),
		ProductiveDuration: utils.FormatDuration(result.ProductiveDuration),
		BreakOverlap:       utils.FormatDuration(result.BreakOverlap),
		DayTotal:           utils.FormatDuration(result.Totals.TotalSeconds),
		DayProductive:      utils.FormatDuration(result.Totals.ProductiveSeconds),
		DayBreak:           utils.FormatDuration(result.Totals.BreakSeconds),
		EarlyOut:           result.IsEarly,
	}, nil
}

// BreakStart 开始休息
func (s *AttendanceService) BreakStart(ctx context.Context, publicID int64, req dto.ClockRequest) (*dto.BreakStartResponse, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	var reasonRequired bool

	err = s.withClockLock(ctx, user.ID, utils.DateString(now), func() error {
		return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			day, err := s.loadDay(tx, user.ID, utils.DayOf(now))
			if err != nil {
				return err
			}
			if day == nil {
				return errors.NoOpenSegment
			}

			if err := day.ApplyBreakStart(now, req.Reason, req.Location, clockRules()); err != nil {
				return err
			}
			reasonRequired = day.BreakDuration >= clockRules().BreakReasonThreshold

			return s.saveDay(tx, day)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, user.ID, now)

	return &dto.BreakStartResponse{
		StartAt:        now,
		Date:           utils.DateString(now),
		ReasonRequired: reasonRequired,
	}, nil
}

// BreakEnd 结束休息
func (s *AttendanceService) BreakEnd(ctx context.Context, publicID int64, req dto.ClockRequest) (*dto.BreakEndResponse, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	var duration int64
	var breakTotal int64

	err = s.withClockLock(ctx, user.ID, utils.DateString(now), func() error {
		return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			day, err := s.loadDay(tx, user.ID, utils.DayOf(now))
			if err != nil {
				return err
			}
			if day == nil {
				return errors.NoActiveBreak
			}

			duration, err = day.ApplyBreakEnd(now, req.Reason, req.Location)
			if err != nil {
				return err
			}
			breakTotal = day.BreakDuration

			return s.saveDay(tx, day)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, user.ID, now)

	return &dto.BreakEndResponse{
		EndAt:         now,
		Date:          utils.DateString(now),
		Duration:      utils.FormatDuration(duration),
		BreakDuration: utils.FormatDuration(breakTotal),
	}, nil
}

// buildDayView 把考勤日记录转成视图，未闭合段按 now 截断
func buildDayView(day *model.AttendanceDay, now time.Time) *dto.AttendanceDayView {
	view := &dto.AttendanceDayView{
		Date:           utils.DateString(day.Date),
		Status:         string(day.Status),
		LateIn:         day.LateIn,
		LateInReason:   day.LateInReason,
		EarlyOut:       day.EarlyOut,
		EarlyOutReason: day.EarlyOutReason,
		WorkSegments:   make([]dto.WorkSegmentView, 0, len(day.WorkSegments)),
		BreakSegments:  make([]dto.BreakSegmentView, 0, len(day.BreakSegments)),
	}

	totals := day.Totals(now)
	view.TotalDuration = utils.FormatDuration(totals.TotalSeconds)
	view.Productive = utils.FormatDuration(totals.ProductiveSeconds)
	view.BreakDuration = utils.FormatDuration(totals.BreakSeconds)

	for i := range day.WorkSegments {
		seg := &day.WorkSegments[i]
		segView := dto.WorkSegmentView{
			ClockIn:  seg.ClockIn,
			ClockOut: seg.ClockOut,
		}
		if seg.IsOpen() {
			running := int64(now.Sub(seg.ClockIn) / time.Second)
			segView.Duration = utils.FormatDuration(running)
			segView.ProductiveDuration = utils.FormatDuration(running)
		} else {
			segView.Duration = utils.FormatDuration(seg.Duration)
			segView.ProductiveDuration = utils.FormatDuration(seg.ProductiveDuration)
		}
		view.WorkSegments = append(view.WorkSegments, segView)
	}

	for i := range day.BreakSegments {
		brk := &day.BreakSegments[i]
		brkView := dto.BreakSegmentView{
			StartAt: brk.StartAt,
			EndAt:   brk.EndAt,
			Reason:  brk.Reason,
		}
		if brk.IsOpen() {
			brkView.Duration = utils.FormatDuration(int64(now.Sub(brk.StartAt) / time.Second))
		} else {
			brkView.Duration = utils.FormatDuration(brk.Duration)
		}
		view.BreakSegments = append(view.BreakSegments, brkView)
	}

	return view
}

// DailyReport 查询单日考勤视图，dateStr 为空时取当天
func (s *AttendanceService) DailyReport(ctx context.Context, publicID int64, dateStr string) (*dto.AttendanceDayView, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	day0 := utils.DayOf(now)
	if dateStr == "" {
		dateStr = utils.DateString(now)
	} else {
		parsed, err := utils.ParseDate(dateStr)
		if err != nil {
			return nil, errors.InvalidDate
		}
		day0 = parsed
	}

	// 当日有未闭合段时视图是流动的，缓存只作为热点兜底
	if view, hit, err := cache.GetDayView(ctx, user.ID, dateStr); err == nil && hit && view != nil {
		return view, nil
	}

	day, err := s.loadDay(database.DB().WithContext(ctx), user.ID, day0)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return &dto.AttendanceDayView{
			Date:          dateStr,
			Status:        string(model.AttendanceStatusAbsent),
			TotalDuration: utils.FormatDuration(0),
			Productive:    utils.FormatDuration(0),
			BreakDuration: utils.FormatDuration(0),
			WorkSegments:  []dto.WorkSegmentView{},
			BreakSegments: []dto.BreakSegmentView{},
		}, nil
	}

	view := buildDayView(day, now)

	// 全部闭合后视图稳定，才值得缓存
	if day.OpenSegment() == nil && day.OpenBreak() == nil {
		if err := cache.SetDayView(ctx, user.ID, dateStr, view); err != nil {
			logger.Logger.Warn("Failed to cache day view", zap.Error(err))
		}
	}

	return view, nil
}

// History 查询历史考勤视图，按日期倒序
func (s *AttendanceService) History(ctx context.Context, publicID int64, query dto.AttendanceHistoryQuery) ([]dto.AttendanceDayView, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 31
	}

	db := database.DB().WithContext(ctx).
		Preload("WorkSegments", func(db *gorm.DB) *gorm.DB {
			return db.Order("clock_in ASC")
		}).
		Preload("BreakSegments", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_at ASC")
		}).
		Where("user_id = ?", user.ID)

	if query.From != "" {
		from, err := utils.ParseDate(query.From)
		if err != nil {
			return nil, errors.InvalidDate
		}
		db = db.Where("date >= ?", from)
	}
	if query.To != "" {
		to, err := utils.ParseDate(query.To)
		if err != nil {
			return nil, errors.InvalidDate
		}
		db = db.Where("date <= ?", to)
	}

	var days []model.AttendanceDay
	if err := db.Order("date DESC").Limit(limit).Find(&days).Error; err != nil {
		return nil, err
	}

	now := utils.Now()
	views := make([]dto.AttendanceDayView, 0, len(days))
	for i := range days {
		views = append(views, *buildDayView(&days[i], now))
	}

	return views, nil
}

// RepairForgottenSessions 批量修复指定考勤日的遗忘会话，scheduler 每天凌晨调用
func (s *AttendanceService) RepairForgottenSessions(ctx context.Context, date time.Time) (int64, error) {
	date = utils.DayOf(date)

	var dayIDs []int64
	err := database.DB().WithContext(ctx).
		Model(&model.AttendanceDay{}).
		Joins("JOIN work_segments ON work_segments.attendance_day_id = attendance_days.id").
		Where("attendance_days.date = ? AND work_segments.clock_out IS NULL AND work_segments.deleted_at IS NULL", date).
		Distinct().
		Pluck("attendance_days.id", &dayIDs).Error
	if err != nil {
		return 0, err
	}

	var repaired int64
	for _, dayID := range dayIDs {
		err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var day model.AttendanceDay
			if err := tx.
				Preload("WorkSegments", func(db *gorm.DB) *gorm.DB {
					return db.Order("clock_in ASC")
				}).
				Preload("BreakSegments", func(db *gorm.DB) *gorm.DB {
					return db.Order("start_at ASC")
				}).
				First(&day, dayID).Error; err != nil {
				return err
			}

			done, err := s.repairDay(tx, &day)
			if err != nil {
				return err
			}
			if done {
				repaired++
			}
			return nil
		})
		if err != nil {
			logger.Logger.Error("Failed to repair forgotten session",
				zap.Int64("attendance_day_id", dayID),
				zap.Error(err),
			)
		}
	}

	if repaired > 0 {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordForgottenRepaired(ctx, repaired)
		}
		logger.Logger.Info("Forgotten session repair finished",
			zap.String("date", utils.DateString(date)),
			zap.Int64("repaired", repaired),
		)
	}

	return repaired, nil
}
