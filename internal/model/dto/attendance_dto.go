package dto

import "time"

// ========== 打卡相关 DTO ==========

// ClockRequest 四种打卡事件共用的请求体
type ClockRequest struct {
	Reason   string `json:"reason"`
	Location string `json:"location"`
}

// ClockInResponse 上班打卡响应，附当日考勤快照
type ClockInResponse struct {
	ClockIn        time.Time          `json:"clock_in"`
	Date           string             `json:"date"`
	Status         string             `json:"status"`
	LateIn         bool               `json:"late_in"`
	ReasonRequired bool               `json:"reason_required"` // 本次打卡是否要求附原因
	Attendance     *AttendanceDayView `json:"attendance"`
}

// ClockOutResponse 下班打卡响应，时长字段统一为 HH:MM:SS
type ClockOutResponse struct {
	ClockOut           time.Time `json:"clock_out"`
	Date               string    `json:"date"`
	Duration           string    `json:"duration"`
	ProductiveDuration string    `json:"productive_duration"`
	BreakOverlap       string    `json:"break_overlap"`
	DayTotal           string    `json:"day_total"`
	DayProductive      string    `json:"day_productive"`
	DayBreak           string    `json:"day_break"` // 当日累计休息
	EarlyOut           bool      `json:"early_out"`
}

// BreakStartResponse 开始休息响应
type BreakStartResponse struct {
	StartAt        time.Time `json:"start_at"`
	Date           string    `json:"date"`
	ReasonRequired bool      `json:"reason_required"` // 累计休息超阈值后开始休息必须附原因
}

// BreakEndResponse 结束休息响应
type BreakEndResponse struct {
	EndAt         time.Time `json:"end_at"`
	Date          string    `json:"date"`
	Duration      string    `json:"duration"`       // 本次休息时长
	BreakDuration string    `json:"break_duration"` // 当日累计休息
}

// WorkSegmentView 工作段视图
type WorkSegmentView struct {
	ClockIn            time.Time  `json:"clock_in"`
	ClockOut           *time.Time `json:"clock_out,omitempty"`
	Duration           string     `json:"duration"`
	ProductiveDuration string     `json:"productive_duration"`
}

// BreakSegmentView 休息段视图
type BreakSegmentView struct {
	StartAt  time.Time  `json:"start_at"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Duration string     `json:"duration"`
	Reason   string     `json:"reason,omitempty"`
}

// AttendanceDayView 单日考勤视图
type AttendanceDayView struct {
	WorkSegments   []WorkSegmentView  `json:"work_segments"`
	BreakSegments  []BreakSegmentView `json:"break_segments"`
	Date           string             `json:"date"`
	Status         string             `json:"status"`
	TotalDuration  string             `json:"total_duration"`
	Productive     string             `json:"productive_duration"`
	BreakDuration  string             `json:"break_duration"`
	LateInReason   string             `json:"late_in_reason,omitempty"`
	EarlyOutReason string             `json:"early_out_reason,omitempty"`
	LateIn         bool               `json:"late_in"`
	EarlyOut       bool               `json:"early_out"`
}

// DailyReportQuery 单日报表查询参数
type DailyReportQuery struct {
	Date   string `form:"date"`    // YYYY-MM-DD，缺省为当天
	UserID int64  `form:"user_id"` // 管理员可查他人
}

// AttendanceHistoryQuery 考勤历史查询参数
type AttendanceHistoryQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit"`
}
