package dto

// ========== 月度汇总 DTO ==========

// SummaryQuery 月度汇总查询参数
type SummaryQuery struct {
	Year   int   `form:"year" binding:"required"`
	Month  int   `form:"month" binding:"required"` // 1-12
	UserID int64 `form:"user_id"` // 管理员可查他人
}

// DaySummary 单日汇总行
// day_span = 首次上班到最后下班的跨度，actual_work = 各段时长之和，
// 两者的差即为休息时间
type DaySummary struct {
	Date         string  `json:"date"`
	DayType      string  `json:"day_type"` // holiday / weekend / work / wfh / leave / absent / od
	HolidayName  string  `json:"holiday_name,omitempty"`
	DaySpan      string  `json:"day_span"`
	ActualWork   string  `json:"actual_work"`
	BreakTime    string  `json:"break_time"`
	LeaveValue   float64 `json:"leave_value,omitempty"` // 1.0 全天 / 0.5 半天
	LateIn       bool    `json:"late_in"`
	EarlyOut     bool    `json:"early_out"`
	UnpaidLeave  bool    `json:"unpaid_leave,omitempty"`
}

// MonthlySummary 月度汇总响应
type MonthlySummary struct {
	Days               []DaySummary `json:"days"`
	Month              string       `json:"month"`
	TotalWork          string       `json:"total_work"`    // 全月实际工时（各段之和）HH:MM:SS
	WorkingHours       string       `json:"working_hours"` // 全月首尾跨度之和 HH:MM:SS
	BreakHours         string       `json:"break_hours"`   // 跨度与实际工时的差值之和 HH:MM:SS
	UserID             int64        `json:"user_id"`
	WorkDays           int          `json:"work_days"`     // 应出勤天数（工作日）
	ClockInDays        int          `json:"clock_in_days"` // 实际出勤的工作日（含远程/外勤）
	OdRemoteDays       int          `json:"od_remote_days"`
	PresentDays        float64      `json:"present_days"`  // 实际出勤（含远程/外勤，半天假计 0.5）
	PayrollPresentDays float64      `json:"payroll_present_days"` // 计薪出勤，无薪假不计入
	LeaveDays          float64      `json:"leave_days"`
	AbsentDays         float64      `json:"absent_days"` // 半天假未出勤时会出现 0.5
	LateDays           int          `json:"late_days"`
	EarlyOutDays       int          `json:"early_out_days"`
	HolidayDays        int          `json:"holiday_days"`
	WeekendDays        int          `json:"weekend_days"`
}
