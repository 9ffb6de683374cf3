package model

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KaoQin/pkg/errors"
	"KaoQin/utils"
)

func TestMain(m *testing.M) {
	if err := utils.InitLocation("UTC"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testRules() ClockRules {
	return ClockRules{
		MinWorkSeconds:       9 * 3600,
		MinProductiveSeconds: 8 * 3600,
		BreakReasonThreshold: 3600,
		ReasonMinLength:      3,
	}
}

func testShift() *Shift {
	s := &Shift{
		Name:       "标准班次",
		StartTime:  "09:00:00",
		MaxClockIn: "09:30:00",
		EndTime:    "18:00:00",
	}
	s.ID = 1
	return s
}

func clockAt(h, m, s int) time.Time {
	return time.Date(2026, 3, 2, h, m, s, 0, time.UTC)
}

func newDay() *AttendanceDay {
	return &AttendanceDay{
		UserID: 100,
		Date:   clockAt(0, 0, 0),
		Status: AttendanceStatusAbsent,
	}
}

func TestApplyClockInOnTime(t *testing.T) {
	day := newDay()

	isLate, err := day.ApplyClockIn(testShift(), clockAt(9, 5, 0), "", "office", DeviceTypeDesktop, testRules())
	require.NoError(t, err)

	assert.False(t, isLate)
	assert.False(t, day.LateIn)
	assert.Equal(t, AttendanceStatusPresent, day.Status)
	assert.Equal(t, int64(1), day.ShiftID)
	require.Len(t, day.WorkSegments, 1)
	assert.True(t, day.WorkSegments[0].IsOpen())
}

func TestApplyClockInBeforeShiftStart(t *testing.T) {
	day := newDay()

	_, err := day.ApplyClockIn(testShift(), clockAt(8, 59, 59), "", "", DeviceTypeDesktop, testRules())
	assert.ErrorIs(t, err, errors.BeforeShiftStart)
	assert.Empty(t, day.WorkSegments)
}

func TestApplyClockInLateRequiresReason(t *testing.T) {
	day := newDay()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 30, 1), "", "", DeviceTypeDesktop, testRules())
	assert.ErrorIs(t, err, errors.LateReasonRequired)

	// 原因不足 3 个字符同样拒绝
	_, err = day.ApplyClockIn(testShift(), clockAt(9, 30, 1), "堵", "", DeviceTypeDesktop, testRules())
	assert.ErrorIs(t, err, errors.LateReasonRequired)

	isLate, err := day.ApplyClockIn(testShift(), clockAt(9, 30, 1), "地铁故障", "", DeviceTypeDesktop, testRules())
	require.NoError(t, err)
	assert.True(t, isLate)
	assert.True(t, day.LateIn)
	assert.Equal(t, "地铁故障", day.LateInReason)
}

func TestApplyClockInExactlyAtMaxClockIn(t *testing.T) {
	day := newDay()

	// 恰好在判定线上不算迟到
	isLate, err := day.ApplyClockIn(testShift(), clockAt(9, 30, 0), "", "", DeviceTypeDesktop, testRules())
	require.NoError(t, err)
	assert.False(t, isLate)
}

func TestApplyClockInWithOpenSegment(t *testing.T) {
	day := newDay()
	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, testRules())
	require.NoError(t, err)

	_, err = day.ApplyClockIn(testShift(), clockAt(10, 0, 0), "", "", DeviceTypeDesktop, testRules())
	assert.ErrorIs(t, err, errors.AlreadyClockedIn)
	assert.Len(t, day.WorkSegments, 1)
}

func TestApplyClockOutWithoutOpenSegment(t *testing.T) {
	day := newDay()

	_, err := day.ApplyClockOut(clockAt(18, 0, 0), "", "", testRules())
	assert.ErrorIs(t, err, errors.NoOpenSegment)
}

func TestApplyClockOutWithActiveBreak(t *testing.T) {
	day := newDay()
	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, testRules())
	require.NoError(t, err)
	require.NoError(t, day.ApplyBreakStart(clockAt(12, 0, 0), "", "", testRules()))

	_, err = day.ApplyClockOut(clockAt(18, 0, 0), "", "", testRules())
	assert.ErrorIs(t, err, errors.BreakActive)
}

func TestApplyClockOutFullDayWithBreak(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	require.NoError(t, day.ApplyBreakStart(clockAt(12, 0, 0), "", "", rules))
	dur, err := day.ApplyBreakEnd(clockAt(13, 0, 0), "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), dur)
	assert.Equal(t, int64(3600), day.BreakDuration)

	// 9:00-18:00 共 9 小时，扣 1 小时休息后有效工时恰好 8 小时，不算早退
	result, err := day.ApplyClockOut(clockAt(18, 0, 0), "", "", rules)
	require.NoError(t, err)

	assert.Equal(t, int64(9*3600), result.SegmentDuration)
	assert.Equal(t, int64(3600), result.BreakOverlap)
	assert.Equal(t, int64(8*3600), result.ProductiveDuration)
	assert.False(t, result.IsEarly)
	assert.False(t, day.EarlyOut)

	require.NotNil(t, day.WorkSegments[0].ClockOut)
	assert.Equal(t, int64(9*3600), day.WorkSegments[0].Duration)
	assert.Equal(t, int64(8*3600), day.WorkSegments[0].ProductiveDuration)
}

func TestApplyClockOutEarlyByTotal(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	// 8 小时在场，不足 9 小时，必须填原因
	_, err = day.ApplyClockOut(clockAt(17, 0, 0), "", "", rules)
	assert.ErrorIs(t, err, errors.EarlyOutReasonRequired)

	result, err := day.ApplyClockOut(clockAt(17, 0, 0), "家里有事", "", rules)
	require.NoError(t, err)
	assert.True(t, result.IsEarly)
	assert.True(t, day.EarlyOut)
	assert.Equal(t, "家里有事", day.EarlyOutReason)
}

func TestApplyClockOutEarlyByProductive(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	// 休息两小时，在场 9 小时但有效工时只有 7 小时
	require.NoError(t, day.ApplyBreakStart(clockAt(12, 0, 0), "", "", rules))
	_, err = day.ApplyBreakEnd(clockAt(14, 0, 0), "", "")
	require.NoError(t, err)

	_, err = day.ApplyClockOut(clockAt(18, 0, 0), "", "", rules)
	assert.ErrorIs(t, err, errors.EarlyOutReasonRequired)

	result, err := day.ApplyClockOut(clockAt(18, 0, 0), "下午请了假", "", rules)
	require.NoError(t, err)
	assert.Equal(t, int64(9*3600), result.SegmentDuration)
	assert.Equal(t, int64(7*3600), result.ProductiveDuration)
	assert.True(t, result.IsEarly)
}

func TestApplyClockOutProductiveNeverNegative(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	// 休息几乎覆盖全部在场时间
	require.NoError(t, day.ApplyBreakStart(clockAt(9, 0, 0), "", "", rules))
	_, err = day.ApplyBreakEnd(clockAt(9, 30, 0), "", "")
	require.NoError(t, err)

	result, err := day.ApplyClockOut(clockAt(9, 30, 0), "身体不适", "", rules)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), result.SegmentDuration)
	assert.Equal(t, int64(0), result.ProductiveDuration)
	assert.GreaterOrEqual(t, result.ProductiveDuration, int64(0))
	assert.LessOrEqual(t, result.ProductiveDuration, result.SegmentDuration)
}

func TestMultipleSegmentsInOneDay(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	_, err = day.ApplyClockOut(clockAt(12, 0, 0), "外出办事", "", rules)
	require.NoError(t, err)

	_, err = day.ApplyClockIn(testShift(), clockAt(14, 0, 0), "外出返回", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	_, err = day.ApplyClockOut(clockAt(19, 0, 0), "补足工时", "", rules)
	require.NoError(t, err)

	require.Len(t, day.WorkSegments, 2)
	assert.Nil(t, day.OpenSegment())

	totals := day.Totals(clockAt(20, 0, 0))
	assert.Equal(t, int64(8*3600), totals.TotalSeconds)
	assert.Equal(t, int64(8*3600), totals.ProductiveSeconds)

	// 第二段打卡不覆盖首次迟到标记
	assert.False(t, day.LateIn)
}

func TestApplyBreakStartWithoutOpenSegment(t *testing.T) {
	day := newDay()

	err := day.ApplyBreakStart(clockAt(12, 0, 0), "", "", testRules())
	assert.ErrorIs(t, err, errors.NoOpenSegment)
}

func TestApplyBreakStartWhileBreakActive(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	require.NoError(t, day.ApplyBreakStart(clockAt(12, 0, 0), "", "", rules))

	err = day.ApplyBreakStart(clockAt(12, 30, 0), "", "", rules)
	assert.ErrorIs(t, err, errors.BreakAlreadyActive)
}

func TestApplyBreakStartReasonAfterThreshold(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	// 第一次休息整一小时，累计刚好到阈值
	require.NoError(t, day.ApplyBreakStart(clockAt(10, 0, 0), "", "", rules))
	_, err = day.ApplyBreakEnd(clockAt(11, 0, 0), "", "")
	require.NoError(t, err)
	require.Equal(t, int64(3600), day.BreakDuration)

	// 再次休息必须填原因
	err = day.ApplyBreakStart(clockAt(14, 0, 0), "", "", rules)
	assert.ErrorIs(t, err, errors.BreakReasonRequired)

	err = day.ApplyBreakStart(clockAt(14, 0, 0), "午休延长", "", rules)
	require.NoError(t, err)
}

func TestApplyBreakEndWithoutActiveBreak(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	_, err = day.ApplyBreakEnd(clockAt(12, 0, 0), "", "")
	assert.ErrorIs(t, err, errors.NoActiveBreak)
}

func TestApplyBreakEndRecomputesDayBreakDuration(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	require.NoError(t, day.ApplyBreakStart(clockAt(10, 0, 0), "", "", rules))
	_, err = day.ApplyBreakEnd(clockAt(10, 30, 0), "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), day.BreakDuration)

	require.NoError(t, day.ApplyBreakStart(clockAt(12, 0, 0), "", "", rules))
	_, err = day.ApplyBreakEnd(clockAt(12, 45, 0), "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1800+2700), day.BreakDuration)
}

func TestTotalsWithOpenSegmentTruncatedAtNow(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	require.NoError(t, day.ApplyBreakStart(clockAt(12, 0, 0), "", "", rules))

	// 休息进行中，now 截断：在场 3.5 小时，休息 0.5 小时
	totals := day.Totals(clockAt(12, 30, 0))
	assert.Equal(t, int64(12600), totals.TotalSeconds)
	assert.Equal(t, int64(10800), totals.ProductiveSeconds)
	assert.Equal(t, int64(1800), totals.BreakSeconds)
}

func TestRepairForgottenSession(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	_, err = day.ApplyClockOut(clockAt(12, 0, 0), "外出办事", "", rules)
	require.NoError(t, err)

	_, err = day.ApplyClockIn(testShift(), clockAt(14, 0, 0), "外出返回", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	require.NoError(t, day.ApplyBreakStart(clockAt(15, 0, 0), "", "", rules))

	// 忘记下班：未闭合的工作段和进行中的休息段一起丢弃，当日记缺勤
	repaired := day.RepairForgottenSession()
	assert.True(t, repaired)
	assert.Equal(t, AttendanceStatusAbsent, day.Status)
	require.Len(t, day.WorkSegments, 1)
	assert.False(t, day.WorkSegments[0].IsOpen())
	assert.Empty(t, day.BreakSegments)
	assert.Equal(t, int64(0), day.BreakDuration)
}

func TestRepairForgottenSessionIdempotent(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	assert.True(t, day.RepairForgottenSession())
	assert.False(t, day.RepairForgottenSession())
	assert.Empty(t, day.WorkSegments)
}

func TestRepairNoOpenSegmentIsNoop(t *testing.T) {
	day := newDay()
	rules := testRules()

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	_, err = day.ApplyClockOut(clockAt(18, 0, 0), "", "", rules)
	require.NoError(t, err)

	before := day.Status
	assert.False(t, day.RepairForgottenSession())
	assert.Equal(t, before, day.Status)
	assert.Len(t, day.WorkSegments, 1)
}

func TestFirstClockInAndLastClockOut(t *testing.T) {
	day := newDay()
	rules := testRules()

	assert.True(t, day.FirstClockIn().IsZero())

	_, err := day.ApplyClockIn(testShift(), clockAt(9, 0, 0), "", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)
	_, err = day.ApplyClockOut(clockAt(12, 0, 0), "外出办事", "", rules)
	require.NoError(t, err)
	_, err = day.ApplyClockIn(testShift(), clockAt(14, 0, 0), "外出返回", "", DeviceTypeDesktop, rules)
	require.NoError(t, err)

	assert.Equal(t, clockAt(9, 0, 0), day.FirstClockIn())
	// 最后一段未闭合，按 now 计
	assert.Equal(t, clockAt(16, 0, 0), day.LastClockOut(clockAt(16, 0, 0)))
}
