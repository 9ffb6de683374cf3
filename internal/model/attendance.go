package model

import (
	"time"

	"KaoQin/pkg/errors"
	"KaoQin/utils"
)

// AttendanceStatus 考勤日状态枚举
type AttendanceStatus string

const (
	AttendanceStatusPresent  AttendanceStatus = "present"   // 出勤
	AttendanceStatusAbsent   AttendanceStatus = "absent"    // 缺勤
	AttendanceStatusOnLeave  AttendanceStatus = "on_leave"  // 请假
	AttendanceStatusOnRemote AttendanceStatus = "on_remote" // 远程办公
	AttendanceStatusOnDuty   AttendanceStatus = "od"        // 外勤/出差
)

// DeviceType 打卡设备类型
type DeviceType string

const (
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeMobile  DeviceType = "mobile" // API 边界直接拒绝
)

// WorkSegment 一段连续的上班-下班区间
type WorkSegment struct {
	BaseModel
	AttendanceDayID  int64      `gorm:"not null;index:idx_work_segments_day" json:"attendance_day_id"`
	ClockIn          time.Time  `gorm:"type:timestamptz;not null" json:"clock_in"`
	ClockOut         *time.Time `gorm:"type:timestamptz" json:"clock_out,omitempty"`
	ClockInLocation  string     `gorm:"type:varchar(255);not null;default:''" json:"clock_in_location,omitempty"`
	ClockOutLocation string     `gorm:"type:varchar(255);not null;default:''" json:"clock_out_location,omitempty"`
	DeviceType       DeviceType `gorm:"type:varchar(16);not null;default:'desktop'" json:"device_type"`

	// 下班打卡时一次性写入
	Duration           int64 `gorm:"not null;default:0" json:"duration"`            // 秒
	ProductiveDuration int64 `gorm:"not null;default:0" json:"productive_duration"` // 秒，扣除休息重叠
}

// TableName 指定表名
func (WorkSegment) TableName() string {
	return "work_segments"
}

// IsOpen 工作段是否还未下班
func (s *WorkSegment) IsOpen() bool {
	return s.ClockOut == nil
}

// BreakSegment 一段连续的休息区间，只能挂在未闭合的工作段内
type BreakSegment struct {
	BaseModel
	AttendanceDayID int64      `gorm:"not null;index:idx_break_segments_day" json:"attendance_day_id"`
	StartAt         time.Time  `gorm:"type:timestamptz;not null" json:"start_at"`
	EndAt           *time.Time `gorm:"type:timestamptz" json:"end_at,omitempty"`
	Duration        int64      `gorm:"not null;default:0" json:"duration"` // 秒
	Reason          string     `gorm:"type:varchar(255);not null;default:''" json:"reason,omitempty"`
	Location        string     `gorm:"type:varchar(255);not null;default:''" json:"location,omitempty"`
}

// TableName 指定表名
func (BreakSegment) TableName() string {
	return "break_segments"
}

// IsOpen 休息段是否还未结束
func (b *BreakSegment) IsOpen() bool {
	return b.EndAt == nil
}

// EndOr 返回休息结束时刻，未结束的按 now 计算
func (b *BreakSegment) EndOr(now time.Time) time.Time {
	if b.EndAt != nil {
		return *b.EndAt
	}
	return now
}

// AttendanceDay 考勤日记录，(user_id, date) 唯一，属于考勤子系统的主数据
// 不变量：任一时刻最多一个未闭合工作段、最多一个未结束休息段，
// 休息段只能在最后一个工作段未闭合时打开，两个列表都按时间有序且互不重叠
type AttendanceDay struct {
	BaseModel
	UserID  int64            `gorm:"not null;uniqueIndex:idx_attendance_days_user_date" json:"user_id"`
	Date    time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_days_user_date" json:"date"`
	ShiftID int64            `gorm:"not null" json:"shift_id"`
	Status  AttendanceStatus `gorm:"type:varchar(16);not null;default:'absent'" json:"status"`

	LateIn       bool   `gorm:"not null;default:false" json:"late_in"`
	LateInReason string `gorm:"type:varchar(255);not null;default:''" json:"late_in_reason,omitempty"`

	EarlyOut       bool   `gorm:"not null;default:false" json:"early_out"`
	EarlyOutReason string `gorm:"type:varchar(255);not null;default:''" json:"early_out_reason,omitempty"`

	// 当日累计休息秒数，每次休息结束时重算
	BreakDuration int64 `gorm:"not null;default:0" json:"break_duration"`

	WorkSegments  []WorkSegment  `gorm:"foreignKey:AttendanceDayID" json:"work_segments"`
	BreakSegments []BreakSegment `gorm:"foreignKey:AttendanceDayID" json:"break_segments"`
}

// TableName 指定表名
func (AttendanceDay) TableName() string {
	return "attendance_days"
}

// ClockRules 打卡规则，由配置注入，模型层不直接读配置
type ClockRules struct {
	MinWorkSeconds       int64 // 出勤时长下限，低于则视为早退
	MinProductiveSeconds int64 // 有效工时下限，低于则视为早退
	BreakReasonThreshold int64 // 累计休息超过该秒数后，再次休息必须填原因
	ReasonMinLength      int   // 原因最短长度
}

// ClockOutResult 下班打卡的计算结果
type ClockOutResult struct {
	SegmentDuration    int64 // 本段时长
	ProductiveDuration int64 // 本段有效工时
	BreakOverlap       int64 // 本段内休息重叠
	IsEarly            bool
	Totals             DayTotals // 全天汇总
}

// DayTotals 单日汇总，未闭合的段按 now 截断计算
type DayTotals struct {
	TotalSeconds      int64 `json:"total_seconds"`
	ProductiveSeconds int64 `json:"productive_seconds"`
	BreakSeconds      int64 `json:"break_seconds"`
}

// OpenSegment 返回未闭合的工作段，没有则返回 nil
func (d *AttendanceDay) OpenSegment() *WorkSegment {
	for i := range d.WorkSegments {
		if d.WorkSegments[i].IsOpen() {
			return &d.WorkSegments[i]
		}
	}
	return nil
}

// LastSegment 返回时间上最后一个工作段
func (d *AttendanceDay) LastSegment() *WorkSegment {
	if len(d.WorkSegments) == 0 {
		return nil
	}
	return &d.WorkSegments[len(d.WorkSegments)-1]
}

// OpenBreak 返回未结束的休息段，没有则返回 nil
func (d *AttendanceDay) OpenBreak() *BreakSegment {
	for i := range d.BreakSegments {
		if d.BreakSegments[i].IsOpen() {
			return &d.BreakSegments[i]
		}
	}
	return nil
}

func reasonTooShort(reason string, rules ClockRules) bool {
	return len([]rune(reason)) < rules.ReasonMinLength
}

// ApplyClockIn 上班打卡。调用方需保证已先对前一日执行遗忘会话修复。
// 返回是否迟到。
func (d *AttendanceDay) ApplyClockIn(shift *Shift, now time.Time, reason, location string, device DeviceType, rules ClockRules) (bool, error) {
	if d.OpenSegment() != nil {
		return false, errors.AlreadyClockedIn
	}

	shiftStart, err := shift.StartOn(now)
	if err != nil {
		return false, err
	}
	if now.Before(shiftStart) {
		return false, errors.BeforeShiftStart
	}

	maxClockIn, err := shift.MaxClockInOn(now)
	if err != nil {
		return false, err
	}

	isLate := now.After(maxClockIn)
	if isLate && reasonTooShort(reason, rules) {
		return false, errors.LateReasonRequired
	}

	// 请假/远程审批可能已经建好当日占位记录，没有任何工作段时迟到标记以实际打卡为准
	if len(d.WorkSegments) == 0 {
		d.LateIn = isLate
		if isLate {
			d.LateInReason = reason
		} else {
			d.LateInReason = ""
		}
	}

	d.Status = AttendanceStatusPresent
	d.ShiftID = shift.ID
	d.WorkSegments = append(d.WorkSegments, WorkSegment{
		AttendanceDayID: d.ID,
		ClockIn:         now,
		ClockInLocation: location,
		DeviceType:      device,
	})

	return isLate, nil
}

// breakOverlapSeconds 统计窗口 [start, end] 内所有休息段的重叠秒数
func (d *AttendanceDay) breakOverlapSeconds(start, end, now time.Time) int64 {
	var total int64
	for i := range d.BreakSegments {
		brk := &d.BreakSegments[i]
		total += utils.OverlapSeconds(start, end, brk.StartAt, brk.EndOr(now))
	}
	return total
}

// ApplyClockOut 下班打卡，闭合当前工作段并固化时长
func (d *AttendanceDay) ApplyClockOut(now time.Time, reason, location string, rules ClockRules) (*ClockOutResult, error) {
	seg := d.OpenSegment()
	if seg == nil {
		return nil, errors.NoOpenSegment
	}
	if d.OpenBreak() != nil {
		return nil, errors.BreakActive
	}

	total := int64(now.Sub(seg.ClockIn) / time.Second)
	breakOverlap := d.breakOverlapSeconds(seg.ClockIn, now, now)
	productive := total - breakOverlap
	if productive < 0 {
		productive = 0
	}

	isEarly := total < rules.MinWorkSeconds || productive < rules.MinProductiveSeconds
	if isEarly && reasonTooShort(reason, rules) {
		return nil, errors.EarlyOutReasonRequired
	}

	clockOut := now
	seg.ClockOut = &clockOut
	seg.ClockOutLocation = location
	seg.Duration = total
	seg.ProductiveDuration = productive

	d.EarlyOut = isEarly
	if isEarly {
		d.EarlyOutReason = reason
	}

	return &ClockOutResult{
		SegmentDuration:    total,
		ProductiveDuration: productive,
		BreakOverlap:       breakOverlap,
		IsEarly:            isEarly,
		Totals:             d.Totals(now),
	}, nil
}

// ApplyBreakStart 开始休息，只允许在有未闭合工作段且没有进行中休息时
func (d *AttendanceDay) ApplyBreakStart(now time.Time, reason, location string, rules ClockRules) error {
	if d.OpenSegment() == nil {
		return errors.NoOpenSegment
	}
	if d.OpenBreak() != nil {
		return errors.BreakAlreadyActive
	}

	if d.BreakDuration >= rules.BreakReasonThreshold && reasonTooShort(reason, rules) {
		return errors.BreakReasonRequired
	}

	d.BreakSegments = append(d.BreakSegments, BreakSegment{
		AttendanceDayID: d.ID,
		StartAt:         now,
		Reason:          reason,
		Location:        location,
	})

	return nil
}

// ApplyBreakEnd 结束休息并重算当日累计休息时长
func (d *AttendanceDay) ApplyBreakEnd(now time.Time, reason, location string) (int64, error) {
	last := d.LastSegment()
	if last == nil || !last.IsOpen() {
		return 0, errors.SegmentClosed
	}

	brk := d.OpenBreak()
	if brk == nil {
		return 0, errors.NoActiveBreak
	}

	endAt := now
	brk.EndAt = &endAt
	brk.Duration = int64(now.Sub(brk.StartAt) / time.Second)
	if reason != "" {
		brk.Reason = reason
	}
	if location != "" {
		brk.Location = location
	}

	d.BreakDuration = d.totalBreakSeconds(now)

	return brk.Duration, nil
}

// totalBreakSeconds 所有休息段时长之和，进行中的按 now 截断
func (d *AttendanceDay) totalBreakSeconds(now time.Time) int64 {
	var total int64
	for i := range d.BreakSegments {
		brk := &d.BreakSegments[i]
		total += int64(brk.EndOr(now).Sub(brk.StartAt) / time.Second)
	}
	return total
}

// Totals 汇总当日所有工作段/休息段，未闭合的按 now 截断
func (d *AttendanceDay) Totals(now time.Time) DayTotals {
	var totals DayTotals
	for i := range d.WorkSegments {
		seg := &d.WorkSegments[i]

		end := now
		if seg.ClockOut != nil {
			end = *seg.ClockOut
		}

		segTotal := int64(end.Sub(seg.ClockIn) / time.Second)
		if segTotal < 0 {
			segTotal = 0
		}

		overlap := d.breakOverlapSeconds(seg.ClockIn, end, now)
		productive := segTotal - overlap
		if productive < 0 {
			productive = 0
		}

		totals.TotalSeconds += segTotal
		totals.ProductiveSeconds += productive
	}

	totals.BreakSeconds = d.totalBreakSeconds(now)
	return totals
}

// FirstClockIn 当日首个上班时刻，无工作段返回零值
func (d *AttendanceDay) FirstClockIn() time.Time {
	if len(d.WorkSegments) == 0 {
		return time.Time{}
	}
	return d.WorkSegments[0].ClockIn
}

// LastClockOut 当日最后一个下班时刻，仍有未闭合段时按 now 计算
func (d *AttendanceDay) LastClockOut(now time.Time) time.Time {
	var last time.Time
	for i := range d.WorkSegments {
		seg := &d.WorkSegments[i]
		end := now
		if seg.ClockOut != nil {
			end = *seg.ClockOut
		}
		if end.After(last) {
			last = end
		}
	}
	return last
}

// RepairForgottenSession 遗忘会话修复：隔夜未下班的工作段连同挂在上面的
// 未结束休息段直接丢弃，当日记为缺勤，丢弃的时长不再计入任何统计。
// 幂等：没有未闭合段时什么都不做。返回是否发生了修复。
func (d *AttendanceDay) RepairForgottenSession() bool {
	if d.OpenSegment() == nil {
		return false
	}

	keptSegs := d.WorkSegments[:0]
	for _, seg := range d.WorkSegments {
		if seg.IsOpen() {
			continue
		}
		keptSegs = append(keptSegs, seg)
	}
	d.WorkSegments = keptSegs

	keptBreaks := d.BreakSegments[:0]
	var breakTotal int64
	for _, brk := range d.BreakSegments {
		if brk.IsOpen() {
			continue
		}
		breakTotal += brk.Duration
		keptBreaks = append(keptBreaks, brk)
	}
	d.BreakSegments = keptBreaks
	d.BreakDuration = breakTotal

	d.Status = AttendanceStatusAbsent
	return true
}
