package model

import (
	"time"

	"KaoQin/utils"
)

// Shift 班次模型，只读参考数据，归属排班子系统
// 时间字段统一为 HH:MM:SS 字符串，结合具体日期换算成时刻
type Shift struct {
	BaseModel
	Name       string `gorm:"type:varchar(64);not null" json:"name"`
	StartTime  string `gorm:"type:varchar(8);not null;default:'09:00:00'" json:"start_time"`
	MaxClockIn string `gorm:"type:varchar(8);not null;default:'09:30:00'" json:"max_clock_in"` // 迟到判定线
	EndTime    string `gorm:"type:varchar(8);not null;default:'18:00:00'" json:"end_time"`
}

// TableName 指定表名
func (Shift) TableName() string {
	return "shifts"
}

// StartOn 返回班次在指定日期的上班时刻
func (s *Shift) StartOn(date time.Time) (time.Time, error) {
	return utils.ParseTime(s.StartTime, utils.DayOf(date))
}

// MaxClockInOn 返回班次在指定日期的迟到判定时刻
func (s *Shift) MaxClockInOn(date time.Time) (time.Time, error) {
	return utils.ParseTime(s.MaxClockIn, utils.DayOf(date))
}

// EndOn 返回班次在指定日期的下班时刻
func (s *Shift) EndOn(date time.Time) (time.Time, error) {
	return utils.ParseTime(s.EndTime, utils.DayOf(date))
}
