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
	"KaoQin/internal/queue"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/logger"
	"KaoQin/pkg/metrics"
	"KaoQin/pkg/snowflake"
	"KaoQin/storage/database"
	"KaoQin/utils"
)

type CorrectionService struct{}

var (
	correctionService *CorrectionService
	correctionOnce    sync.Once
)

func Correction() *CorrectionService {
	correctionOnce.Do(func() {
		correctionService = &CorrectionService{}
	})

	return correctionService
}

func buildCorrectionView(req *model.AttendanceCorrectionRequest) dto.CorrectionView {
	return dto.CorrectionView{
		RequestedTime: req.RequestedTime,
		CreatedAt:     req.CreatedAt,
		DecidedAt:     req.DecidedAt,
		RequestID:     req.PublicID,
		UserID:        req.UserID,
		Date:          utils.DateString(req.Date),
		Type:          string(req.Type),
		Status:        string(req.Status),
		Reason:        req.Reason,
		DecisionNote:  req.DecisionNote,
	}
}

// Create 提交补卡申请
func (s *CorrectionService) Create(ctx context.Context, publicID int64, in dto.CreateCorrectionRequest) (*dto.CorrectionView, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	corrType := model.CorrectionType(in.Type)
	if !corrType.Valid() {
		return nil, errors.InvalidRequestType
	}

	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return nil, errors.InvalidDate
	}

	requestedTime, err := time.Parse(time.RFC3339, in.RequestedTime)
	if err != nil {
		return nil, errors.InvalidTime
	}
	requestedTime = requestedTime.In(utils.Location())

	// 补卡时刻必须落在申请的考勤日内
	if !utils.DayOf(requestedTime).Equal(date) {
		return nil, errors.InvalidTime
	}

	// 补上班卡当日不能已有记录，其余类型必须已有记录
	var dayCount int64
	err = database.DB().WithContext(ctx).
		Model(&model.AttendanceDay{}).
		Where("user_id = ? AND date = ?", user.ID, date).
		Count(&dayCount).Error
	if err != nil {
		return nil, err
	}
	if err := corrType.CheckTarget(dayCount > 0); err != nil {
		return nil, err
	}

	// 同一 (用户, 日期, 类型) 只允许一条待审批申请
	var pending int64
	err = database.DB().WithContext(ctx).
		Model(&model.AttendanceCorrectionRequest{}).
		Where("user_id = ? AND date = ? AND type = ? AND status = ?",
			user.ID, date, corrType, model.CorrectionStatusPending).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, errors.DuplicateRequest
	}

	reqPublicID, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}

	req := &model.AttendanceCorrectionRequest{
		PublicID:      reqPublicID,
		UserID:        user.ID,
		Date:          date,
		Type:          corrType,
		Status:        model.CorrectionStatusPending,
		RequestedTime: requestedTime,
		Reason:        in.Reason,
	}

	if err := database.DB().WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}

	logger.Logger.Info("Correction request created",
		zap.Int64("request_id", req.PublicID),
		zap.Int64("user_id", user.ID),
		zap.String("date", in.Date),
		zap.String("type", in.Type),
	)

	view := buildCorrectionView(req)
	return &view, nil
}

// List 查询补卡申请，普通员工只能看自己的
func (s *CorrectionService) List(ctx context.Context, publicID int64, isAdmin bool, query dto.CorrectionListQuery) ([]dto.CorrectionView, error) {
	user, err := User().GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	db := database.DB().WithContext(ctx).Model(&model.AttendanceCorrectionRequest{})

	if isAdmin {
		if query.UserID > 0 {
			target, err := User().GetByPublicID(ctx, query.UserID)
			if err != nil {
				return nil, err
			}
			db = db.Where("user_id = ?", target.ID)
		}
	} else {
		db = db.Where("user_id = ?", user.ID)
	}

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var requests []model.AttendanceCorrectionRequest
	if err := db.Order("created_at DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, err
	}

	views := make([]dto.CorrectionView, 0, len(requests))
	for i := range requests {
		views = append(views, buildCorrectionView(&requests[i]))
	}

	return views, nil
}

// replayEvent 以 requested_time 作为当前时刻重放对应的打卡事件
func (s *CorrectionService) replayEvent(tx *gorm.DB, req *model.AttendanceCorrectionRequest) error {
	att := Attendance()

	var user model.User
	if err := tx.First(&user, req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.UserNotFound
		}
		return err
	}

	at := req.RequestedTime

	switch req.Type {
	case model.CorrectionTypeClockIn:
		var shift model.Shift
		if err := tx.First(&shift, user.ShiftID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ShiftNotFound
			}
			return err
		}

		day, err := att.loadOrCreateDay(tx, user.ID, req.Date, shift.ID)
		if err != nil {
			return err
		}
		if _, err := day.ApplyClockIn(&shift, at, req.Reason, "", model.DeviceTypeDesktop, clockRules()); err != nil {
			return err
		}
		return att.saveDay(tx, day)

	case model.CorrectionTypeClockOut:
		day, err := att.loadDay(tx, req.UserID, req.Date)
		if err != nil {
			return err
		}
		if day == nil {
			return errors.NoOpenSegment
		}
		if _, err := day.ApplyClockOut(at, req.Reason, "", clockRules()); err != nil {
			return err
		}
		return att.saveDay(tx, day)

	case model.CorrectionTypeBreakIn:
		day, err := att.loadDay(tx, req.UserID, req.Date)
		if err != nil {
			return err
		}
		if day == nil {
			return errors.NoOpenSegment
		}
		if err := day.ApplyBreakStart(at, req.Reason, "", clockRules()); err != nil {
			return err
		}
		return att.saveDay(tx, day)

	case model.CorrectionTypeBreakOut:
		day, err := att.loadDay(tx, req.UserID, req.Date)
		if err != nil {
			return err
		}
		if day == nil {
			return errors.NoActiveBreak
		}
		if _, err := day.ApplyBreakEnd(at, req.Reason, ""); err != nil {
			return err
		}
		return att.saveDay(tx, day)
	}

	return errors.InvalidRequestType
}

// Decide 审批补卡申请，approve 会在同一事务里重放打卡事件，
// 重放不满足前置条件时整个审批回滚，申请保持待审批
func (s *CorrectionService) Decide(ctx context.Context, adminPublicID, requestPublicID int64, in dto.DecideCorrectionRequest) (*dto.CorrectionView, error) {
	admin, err := User().GetByPublicID(ctx, adminPublicID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, errors.AdminRequired
	}

	var status model.CorrectionStatus
	switch in.Action {
	case "approve":
		status = model.CorrectionStatusApproved
	case "reject":
		status = model.CorrectionStatusRejected
	default:
		return nil, errors.InvalidRequestAction
	}

	now := utils.Now()
	var req model.AttendanceCorrectionRequest

	// 先读一次拿到 (user, date)，终态校验在锁内事务里重新做
	if err := database.DB().WithContext(ctx).
		Where("public_id = ?", requestPublicID).First(&req).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.RequestNotFound
		}
		return nil, err
	}

	// 重放和实时打卡共用同一把 (user, date) 锁，避免读改写互踩
	err = Attendance().withClockLock(ctx, req.UserID, utils.DateString(req.Date), func() error {
		return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("public_id = ?", requestPublicID).First(&req).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.RequestNotFound
				}
				return err
			}

			if req.Status.Decided() {
				return errors.RequestAlreadyDecided
			}

			if status == model.CorrectionStatusApproved {
				if err := s.replayEvent(tx, &req); err != nil {
					return err
				}
			}

			req.Status = status
			req.DecidedBy = admin.ID
			req.DecidedAt = &now
			req.DecisionNote = in.Note

			return tx.Save(&req).Error
		})
	})
	if err != nil {
		return nil, err
	}

	// 审批通过改写了当日数据，读缓存失效
	if status == model.CorrectionStatusApproved {
		date := utils.DateString(req.Date)
		month := req.Date.In(utils.Location()).Format("2006-01")
		if err := cache.InvalidateDayView(ctx, req.UserID, date); err != nil {
			logger.Logger.Warn("Failed to invalidate day view cache", zap.Error(err))
		}
		if err := cache.InvalidateMonthlySummary(ctx, req.UserID, month); err != nil {
			logger.Logger.Warn("Failed to invalidate monthly summary cache", zap.Error(err))
		}
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordCorrectionDecision(ctx, in.Action)
	}

	if err := queue.PublishCorrectionDecided(model.CorrectionDecidedMessage{
		RequestID: req.PublicID,
		UserID:    req.UserID,
		Date:      utils.DateString(req.Date),
		Type:      string(req.Type),
		Status:    string(req.Status),
		DecidedAt: now.Format(time.RFC3339),
	}); err != nil {
		logger.Logger.Warn("Failed to publish correction decided message", zap.Error(err))
	}

	view := buildCorrectionView(&req)
	return &view, nil
}
