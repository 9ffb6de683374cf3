package model

import (
	"time"

	"KaoQin/internal/model/dto"
	"KaoQin/utils"
)

// BuildMonthlySummary 汇总 [first, next) 区间内的考勤数据，纯函数。
// 日类型优先级：节假日 > 周末 > 实际出勤 > 外勤 > 远程 > 请假 > 缺勤
func BuildMonthlySummary(
	userID int64,
	month string,
	first, next time.Time,
	now time.Time,
	days []AttendanceDay,
	leaves []LeaveRequest,
	wfhs []WorkFromHomeRequest,
	holidays []Holiday,
) *dto.MonthlySummary {
	// 查当月时只统计到今天为止，未到的日子不算缺勤
	if end := utils.DayOf(now).AddDate(0, 0, 1); end.Before(next) {
		next = end
	}

	dayByDate := make(map[string]*AttendanceDay, len(days))
	for i := range days {
		dayByDate[utils.DateString(days[i].Date)] = &days[i]
	}

	leaveByDate := make(map[string]*LeaveRequest, len(leaves))
	for i := range leaves {
		if leaves[i].Status == LeaveStatusApproved {
			leaveByDate[utils.DateString(leaves[i].Date)] = &leaves[i]
		}
	}

	wfhByDate := make(map[string]bool, len(wfhs))
	for i := range wfhs {
		if wfhs[i].Status == LeaveStatusApproved {
			wfhByDate[utils.DateString(wfhs[i].Date)] = true
		}
	}

	holidayByDate := make(map[string]string, len(holidays))
	for i := range holidays {
		holidayByDate[utils.DateString(holidays[i].Date)] = holidays[i].Name
	}

	summary := &dto.MonthlySummary{
		Month:  month,
		UserID: userID,
		Days:   make([]dto.DaySummary, 0, 31),
	}

	var workingSeconds, actualWorkingSeconds, breakSeconds int64

	for cur := first; cur.Before(next); cur = cur.AddDate(0, 0, 1) {
		dateStr := utils.DateString(cur)
		att := dayByDate[dateStr]
		leave := leaveByDate[dateStr]

		row := dto.DaySummary{
			Date:       dateStr,
			DaySpan:    utils.FormatDuration(0),
			ActualWork: utils.FormatDuration(0),
			BreakTime:  utils.FormatDuration(0),
		}

		// 当日工时：day_span 按首尾打卡跨度，actual_work 按各段之和
		var daySpan, actualWork, breakTime int64
		if att != nil && len(att.WorkSegments) > 0 {
			firstIn := att.FirstClockIn()
			lastOut := att.LastClockOut(now)

			daySpan = int64(lastOut.Sub(firstIn) / time.Second)
			if daySpan < 0 {
				daySpan = 0
			}

			totals := att.Totals(now)
			actualWork = totals.TotalSeconds

			breakTime = daySpan - actualWork
			if breakTime < 0 {
				breakTime = 0
			}

			row.DaySpan = utils.FormatDuration(daySpan)
			row.ActualWork = utils.FormatDuration(actualWork)
			row.BreakTime = utils.FormatDuration(breakTime)
			row.LateIn = att.LateIn
			row.EarlyOut = att.EarlyOut
		}

		worked := actualWork > 0

		switch {
		case holidayByDate[dateStr] != "":
			row.DayType = "holiday"
			row.HolidayName = holidayByDate[dateStr]
			summary.HolidayDays++

		case cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday:
			row.DayType = "weekend"
			summary.WeekendDays++

		default:
			// 工作日
			summary.WorkDays++

			var leaveValue float64
			if leave != nil {
				leaveValue = leave.DayValue
				row.LeaveValue = leaveValue
				row.UnpaidLeave = !leave.Paid
			}

			switch {
			case worked || (att != nil && att.Status == AttendanceStatusPresent):
				row.DayType = "work"
			case att != nil && att.Status == AttendanceStatusOnDuty:
				row.DayType = "od"
			case att != nil && att.Status == AttendanceStatusOnRemote, wfhByDate[dateStr]:
				row.DayType = "wfh"
			case leave != nil:
				row.DayType = "leave"
			default:
				row.DayType = "absent"
			}

			switch row.DayType {
			case "work", "od", "wfh":
				summary.ClockInDays++
				if row.DayType == "od" || row.DayType == "wfh" {
					summary.OdRemoteDays++
				}

				// 半天假与半天出勤并存时出勤只计剩余部分
				presentValue := 1.0 - leaveValue
				if presentValue < 0 {
					presentValue = 0
				}
				summary.PresentDays += presentValue
				// 计薪口径：当天实际出勤即按整天计薪
				summary.PayrollPresentDays++
				summary.LeaveDays += leaveValue
				if row.LateIn {
					summary.LateDays++
				}
				if row.EarlyOut {
					summary.EarlyOutDays++
				}

				workingSeconds += daySpan
				actualWorkingSeconds += actualWork
				breakSeconds += breakTime
			case "leave":
				summary.LeaveDays += leaveValue
				// 有薪假计入计薪出勤，无薪假不计
				if leave.Paid {
					summary.PayrollPresentDays += leaveValue
				}
				// 半天假没来上班，剩下的半天算缺勤
				summary.AbsentDays += 1.0 - leaveValue
			default:
				summary.AbsentDays++
			}
		}

		summary.Days = append(summary.Days, row)
	}

	summary.TotalWork = utils.FormatDuration(actualWorkingSeconds)
	summary.WorkingHours = utils.FormatDuration(workingSeconds)
	summary.BreakHours = utils.FormatDuration(breakSeconds)
	return summary
}
