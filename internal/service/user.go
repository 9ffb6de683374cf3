package service

import (
	"context"
	"strconv"
	"sync"

	"gorm.io/gorm"

	"KaoQin/internal/model"
	"KaoQin/pkg/errors"
	"KaoQin/storage/database"
)

type UserService struct{}

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = &UserService{}
	})

	return userService
}

// GetByPublicID 按对外 ID 查用户
func (s *UserService) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	var user model.User
	err := database.DB().WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&user).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.UserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// ResolvePublicID 解析 token 中的用户 ID 字符串
func (s *UserService) ResolvePublicID(raw string) (int64, error) {
	publicID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || publicID <= 0 {
		return 0, errors.InvalidUserID
	}
	return publicID, nil
}

// GetShift 查询班次
func (s *UserService) GetShift(ctx context.Context, shiftID int64) (*model.Shift, error) {
	var shift model.Shift
	err := database.DB().WithContext(ctx).
		Where("id = ?", shiftID).
		First(&shift).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ShiftNotFound
		}
		return nil, err
	}

	return &shift, nil
}

// ListActiveByShift 查询某班次下启用提醒的在职员工，供提醒扫描用
func (s *UserService) ListActiveByShift(ctx context.Context, shiftID int64) ([]model.User, error) {
	var users []model.User
	err := database.DB().WithContext(ctx).
		Where("shift_id = ? AND status = ? AND clock_in_reminder_enabled = ?",
			shiftID, model.UserStatusActive, true).
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

// ListShifts 查询全部班次
func (s *UserService) ListShifts(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := database.DB().WithContext(ctx).Find(&shifts).Error
	if err != nil {
		return nil, err
	}

	return shifts, nil
}
