package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func closedSegment(day, inHour, outHour int) WorkSegment {
	out := time.Date(2026, 3, day, outHour, 0, 0, 0, time.UTC)
	in := time.Date(2026, 3, day, inHour, 0, 0, 0, time.UTC)
	return WorkSegment{
		ClockIn:            in,
		ClockOut:           &out,
		Duration:           int64(out.Sub(in) / time.Second),
		ProductiveDuration: int64(out.Sub(in) / time.Second),
	}
}

// 一周样本：2026-03-02（周一）到 2026-03-08（周日）
// 周一实际出勤且迟到，周二节假日，周三全天有薪假，
// 周四半天无薪假未出勤，周五远程办公，周末两天
func TestBuildMonthlySummaryWeek(t *testing.T) {
	first := date(2)
	next := date(9)
	now := date(9)

	days := []AttendanceDay{
		{
			UserID: 100,
			Date:   date(2),
			Status: AttendanceStatusPresent,
			LateIn: true,
			WorkSegments: []WorkSegment{
				closedSegment(2, 9, 12),
				closedSegment(2, 13, 18),
			},
		},
	}

	leaves := []LeaveRequest{
		{UserID: 100, Date: date(4), DayValue: 1.0, Paid: true, Status: LeaveStatusApproved},
		{UserID: 100, Date: date(5), DayValue: 0.5, Paid: false, Status: LeaveStatusApproved},
	}

	wfhs := []WorkFromHomeRequest{
		{UserID: 100, Date: date(6), Status: LeaveStatusApproved},
	}

	holidays := []Holiday{
		{Date: date(3), Name: "植树节"},
	}

	summary := BuildMonthlySummary(100, "2026-03", first, next, now, days, leaves, wfhs, holidays)

	require.Len(t, summary.Days, 7)
	assert.Equal(t, "2026-03", summary.Month)
	assert.Equal(t, int64(100), summary.UserID)

	assert.Equal(t, "work", summary.Days[0].DayType)
	assert.Equal(t, "holiday", summary.Days[1].DayType)
	assert.Equal(t, "植树节", summary.Days[1].HolidayName)
	assert.Equal(t, "leave", summary.Days[2].DayType)
	assert.Equal(t, "leave", summary.Days[3].DayType)
	assert.True(t, summary.Days[3].UnpaidLeave)
	assert.Equal(t, "wfh", summary.Days[4].DayType)
	assert.Equal(t, "weekend", summary.Days[5].DayType)
	assert.Equal(t, "weekend", summary.Days[6].DayType)

	// 周一：跨度 9 小时，实际工时 8 小时，差值即休息
	assert.Equal(t, "09:00:00", summary.Days[0].DaySpan)
	assert.Equal(t, "08:00:00", summary.Days[0].ActualWork)
	assert.Equal(t, "01:00:00", summary.Days[0].BreakTime)
	assert.True(t, summary.Days[0].LateIn)

	assert.Equal(t, 4, summary.WorkDays)
	assert.Equal(t, 2, summary.ClockInDays)
	assert.Equal(t, 1, summary.OdRemoteDays)
	assert.Equal(t, 1, summary.HolidayDays)
	assert.Equal(t, 2, summary.WeekendDays)
	assert.InDelta(t, 2.0, summary.PresentDays, 0.001)
	assert.InDelta(t, 3.0, summary.PayrollPresentDays, 0.001)
	assert.InDelta(t, 1.5, summary.LeaveDays, 0.001)
	assert.InDelta(t, 0.5, summary.AbsentDays, 0.001)
	assert.Equal(t, 1, summary.LateDays)
	assert.Equal(t, 0, summary.EarlyOutDays)
	assert.Equal(t, "08:00:00", summary.TotalWork)
	assert.Equal(t, "09:00:00", summary.WorkingHours)
	assert.Equal(t, "01:00:00", summary.BreakHours)
}

// 查询当月时窗口截断到今天，之后的工作日不算缺勤
func TestBuildMonthlySummaryClampedToToday(t *testing.T) {
	first := date(1)
	next := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	now := date(10)

	summary := BuildMonthlySummary(100, "2026-03", first, next, now, nil, nil, nil, nil)

	// 3 月 1 日（周日）到 3 月 10 日，只有已过去的 7 个工作日计缺勤
	require.Len(t, summary.Days, 10)
	assert.Equal(t, 7, summary.WorkDays)
	assert.InDelta(t, 7.0, summary.AbsentDays, 0.001)
	assert.Equal(t, 3, summary.WeekendDays)
}

func TestBuildMonthlySummaryHalfDayLeaveWithWork(t *testing.T) {
	first := date(2)
	next := date(3)
	now := date(3)

	days := []AttendanceDay{
		{
			UserID:       100,
			Date:         date(2),
			Status:       AttendanceStatusPresent,
			WorkSegments: []WorkSegment{closedSegment(2, 13, 17)},
		},
	}
	leaves := []LeaveRequest{
		{UserID: 100, Date: date(2), DayValue: 0.5, Paid: true, Status: LeaveStatusApproved},
	}

	summary := BuildMonthlySummary(100, "2026-03", first, next, now, days, leaves, nil, nil)

	require.Len(t, summary.Days, 1)
	assert.Equal(t, "work", summary.Days[0].DayType)
	assert.InDelta(t, 0.5, summary.Days[0].LeaveValue, 0.001)

	// 半天假 + 半天出勤：出勤 0.5，实际出勤即计薪满一天
	assert.InDelta(t, 0.5, summary.PresentDays, 0.001)
	assert.InDelta(t, 1.0, summary.PayrollPresentDays, 0.001)
	assert.InDelta(t, 0.5, summary.LeaveDays, 0.001)
	assert.InDelta(t, 0, summary.AbsentDays, 0.001)
}

// 出勤日叠加无薪半天假：实际出勤了就按整天计薪
func TestBuildMonthlySummaryWorkedDayWithUnpaidHalfLeave(t *testing.T) {
	first := date(2)
	next := date(3)
	now := date(3)

	days := []AttendanceDay{
		{
			UserID:       100,
			Date:         date(2),
			Status:       AttendanceStatusPresent,
			WorkSegments: []WorkSegment{closedSegment(2, 13, 17)},
		},
	}
	leaves := []LeaveRequest{
		{UserID: 100, Date: date(2), DayValue: 0.5, Paid: false, Status: LeaveStatusApproved},
	}

	summary := BuildMonthlySummary(100, "2026-03", first, next, now, days, leaves, nil, nil)

	require.Len(t, summary.Days, 1)
	assert.Equal(t, "work", summary.Days[0].DayType)
	assert.True(t, summary.Days[0].UnpaidLeave)
	assert.InDelta(t, 0.5, summary.PresentDays, 0.001)
	assert.InDelta(t, 1.0, summary.PayrollPresentDays, 0.001)
	assert.InDelta(t, 0.5, summary.LeaveDays, 0.001)
	assert.InDelta(t, 0, summary.AbsentDays, 0.001)
}

func TestBuildMonthlySummaryHolidayBeatsWeekend(t *testing.T) {
	// 2026-03-07 是周六，同时也是节假日，按节假日计
	first := date(7)
	next := date(8)

	holidays := []Holiday{{Date: date(7), Name: "调休"}}

	summary := BuildMonthlySummary(100, "2026-03", first, next, date(8), nil, nil, nil, holidays)

	require.Len(t, summary.Days, 1)
	assert.Equal(t, "holiday", summary.Days[0].DayType)
	assert.Equal(t, 1, summary.HolidayDays)
	assert.Equal(t, 0, summary.WeekendDays)
	assert.Equal(t, 0, summary.WorkDays)
}

func TestBuildMonthlySummaryPendingLeaveIgnored(t *testing.T) {
	first := date(2)
	next := date(3)

	leaves := []LeaveRequest{
		{UserID: 100, Date: date(2), DayValue: 1.0, Paid: true, Status: LeaveStatusPending},
	}

	summary := BuildMonthlySummary(100, "2026-03", first, next, date(3), nil, leaves, nil, nil)

	require.Len(t, summary.Days, 1)
	assert.Equal(t, "absent", summary.Days[0].DayType)
	assert.InDelta(t, 1.0, summary.AbsentDays, 0.001)
	assert.InDelta(t, 0, summary.LeaveDays, 0.001)
}

func TestBuildMonthlySummaryOnDutyDay(t *testing.T) {
	first := date(2)
	next := date(3)

	days := []AttendanceDay{
		{UserID: 100, Date: date(2), Status: AttendanceStatusOnDuty},
	}

	summary := BuildMonthlySummary(100, "2026-03", first, next, date(3), days, nil, nil, nil)

	require.Len(t, summary.Days, 1)
	assert.Equal(t, "od", summary.Days[0].DayType)
	assert.Equal(t, 1, summary.ClockInDays)
	assert.Equal(t, 1, summary.OdRemoteDays)
	assert.InDelta(t, 1.0, summary.PresentDays, 0.001)
	assert.InDelta(t, 1.0, summary.PayrollPresentDays, 0.001)
}

func TestBuildMonthlySummaryFullMonthLength(t *testing.T) {
	first := date(1)
	next := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	summary := BuildMonthlySummary(100, "2026-03", first, next, next, nil, nil, nil, nil)

	assert.Len(t, summary.Days, 31)
	assert.Equal(t, "00:00:00", summary.TotalWork)
}
