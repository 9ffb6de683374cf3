package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 3, 2, h, m, s, 0, time.UTC)
}

func TestOverlapSecondsFullContainment(t *testing.T) {
	// 休息段完全落在工作段内
	got := OverlapSeconds(at(9, 0, 0), at(18, 0, 0), at(12, 0, 0), at(13, 0, 0))
	assert.Equal(t, int64(3600), got)
}

func TestOverlapSecondsPartial(t *testing.T) {
	// 休息段跨过工作段结尾，只计重叠部分
	got := OverlapSeconds(at(9, 0, 0), at(12, 30, 0), at(12, 0, 0), at(13, 0, 0))
	assert.Equal(t, int64(1800), got)
}

func TestOverlapSecondsDisjoint(t *testing.T) {
	got := OverlapSeconds(at(9, 0, 0), at(12, 0, 0), at(13, 0, 0), at(14, 0, 0))
	assert.Equal(t, int64(0), got)
}

func TestOverlapSecondsTouching(t *testing.T) {
	// 边界相接不算重叠
	got := OverlapSeconds(at(9, 0, 0), at(12, 0, 0), at(12, 0, 0), at(13, 0, 0))
	assert.Equal(t, int64(0), got)
}

func TestOverlapSecondsIdentical(t *testing.T) {
	got := OverlapSeconds(at(9, 0, 0), at(10, 0, 0), at(9, 0, 0), at(10, 0, 0))
	assert.Equal(t, int64(3600), got)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "00:00:59", FormatDuration(59))
	assert.Equal(t, "01:00:00", FormatDuration(3600))
	assert.Equal(t, "08:30:15", FormatDuration(8*3600+30*60+15))
	// 超过 24 小时不回卷
	assert.Equal(t, "100:00:00", FormatDuration(360000))
}

func TestFormatDurationNegative(t *testing.T) {
	// 负数统一钳到零
	assert.Equal(t, "00:00:00", FormatDuration(-1))
	assert.Equal(t, "00:00:00", FormatDuration(-86400))
}

func TestParseDuration(t *testing.T) {
	got, err := ParseDuration("08:30:15")
	require.NoError(t, err)
	assert.Equal(t, int64(8*3600+30*60+15), got)

	got, err = ParseDuration("00:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = ParseDuration("100:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(360000), got)
}

func TestParseDurationInvalid(t *testing.T) {
	for _, text := range []string{"", "abc", "08:30", "08:61:00", "08:00:99"} {
		_, err := ParseDuration(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestFormatParseDurationRoundTrip(t *testing.T) {
	for _, seconds := range []int64{0, 1, 59, 60, 3599, 3600, 32400, 28800, 360000} {
		got, err := ParseDuration(FormatDuration(seconds))
		require.NoError(t, err)
		assert.Equal(t, seconds, got)
	}
}

func TestParseTimeOnDate(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	got, err := ParseTime("09:30:00", date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), got)

	// 空串返回日期本身
	got, err = ParseTime("", date)
	require.NoError(t, err)
	assert.Equal(t, date, got)
}

func TestDayOfAndDateString(t *testing.T) {
	require.NoError(t, InitLocation("UTC"))

	ts := at(23, 59, 59)
	day := DayOf(ts)
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, ts.Day(), day.Day())
	assert.Equal(t, "2026-03-02", DateString(ts))
}
