package model

import (
	"time"

	"KaoQin/pkg/errors"
)

// CorrectionType 补卡类型枚举，对应四种打卡事件
type CorrectionType string

const (
	CorrectionTypeClockIn  CorrectionType = "clock-in"
	CorrectionTypeClockOut CorrectionType = "clock-out"
	CorrectionTypeBreakIn  CorrectionType = "break-in"
	CorrectionTypeBreakOut CorrectionType = "break-out"
)

// Valid 是否为合法的补卡类型
func (t CorrectionType) Valid() bool {
	switch t {
	case CorrectionTypeClockIn, CorrectionTypeClockOut, CorrectionTypeBreakIn, CorrectionTypeBreakOut:
		return true
	}
	return false
}

// CheckTarget 建单前置校验：补上班卡要求当日尚无考勤记录，
// 其余三种类型必须已有记录可改
func (t CorrectionType) CheckTarget(dayExists bool) error {
	if t == CorrectionTypeClockIn {
		if dayExists {
			return errors.AttendanceExists
		}
		return nil
	}
	if !dayExists {
		return errors.AttendanceNotFound
	}
	return nil
}

// CorrectionStatus 补卡审批状态，approved/rejected 为终态
type CorrectionStatus string

const (
	CorrectionStatusPending  CorrectionStatus = "pending"
	CorrectionStatusApproved CorrectionStatus = "approved"
	CorrectionStatusRejected CorrectionStatus = "rejected"
)

// Decided 是否已进入终态
func (s CorrectionStatus) Decided() bool {
	return s == CorrectionStatusApproved || s == CorrectionStatusRejected
}

// AttendanceCorrectionRequest 补卡申请
// 审批通过时用 requested_time 作为 "当前时刻" 重放对应打卡事件
type AttendanceCorrectionRequest struct {
	BaseModel
	PublicID int64            `gorm:"uniqueIndex;not null" json:"public_id"`
	UserID   int64            `gorm:"not null;index:idx_correction_requests_user" json:"user_id"`
	Date     time.Time        `gorm:"type:date;not null" json:"date"`
	Type     CorrectionType   `gorm:"type:varchar(16);not null" json:"type"`
	Status   CorrectionStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_correction_requests_status" json:"status"`

	RequestedTime time.Time `gorm:"type:timestamptz;not null" json:"requested_time"`
	Reason        string    `gorm:"type:varchar(255);not null;default:''" json:"reason"`

	DecidedBy    int64      `gorm:"not null;default:0" json:"decided_by,omitempty"`
	DecidedAt    *time.Time `gorm:"type:timestamptz" json:"decided_at,omitempty"`
	DecisionNote string     `gorm:"type:varchar(255);not null;default:''" json:"decision_note,omitempty"`
}

// TableName 指定表名
func (AttendanceCorrectionRequest) TableName() string {
	return "attendance_correction_requests"
}
