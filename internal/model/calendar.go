package model

import "time"

// LeaveStatus 请假/远程申请状态
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// LeaveRequest 请假记录，月度汇总只看 approved 的
// day_value 支持 1.0 全天和 0.5 半天
type LeaveRequest struct {
	BaseModel
	UserID    int64       `gorm:"not null;index:idx_leave_requests_user" json:"user_id"`
	Date      time.Time   `gorm:"type:date;not null" json:"date"`
	DayValue  float64     `gorm:"type:numeric(2,1);not null;default:1.0" json:"day_value"`
	Paid      bool        `gorm:"not null;default:true" json:"paid"` // 无薪假不计入应发出勤
	LeaveType string      `gorm:"type:varchar(32);not null;default:''" json:"leave_type"`
	Status    LeaveStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Reason    string      `gorm:"type:varchar(255);not null;default:''" json:"reason,omitempty"`
}

// TableName 指定表名
func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// WorkFromHomeRequest 远程办公记录
type WorkFromHomeRequest struct {
	BaseModel
	UserID int64       `gorm:"not null;index:idx_wfh_requests_user" json:"user_id"`
	Date   time.Time   `gorm:"type:date;not null" json:"date"`
	Status LeaveStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Reason string      `gorm:"type:varchar(255);not null;default:''" json:"reason,omitempty"`
}

// TableName 指定表名
func (WorkFromHomeRequest) TableName() string {
	return "wfh_requests"
}

// Holiday 法定节假日，全员生效，优先级高于周末
type Holiday struct {
	BaseModel
	Date time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	Name string    `gorm:"type:varchar(64);not null" json:"name"`
}

// TableName 指定表名
func (Holiday) TableName() string {
	return "holidays"
}
