package utils

import (
	"fmt"
	"sync"
	"time"
)

// 公司统一时区由启动时注入（cmd 层读取 ORG_TIMEZONE 后调用 InitLocation），
// 不在这里直接读配置，方便在没有环境变量的场景下单独使用

var (
	locMu       sync.RWMutex
	orgLocation = time.Local
)

// InitLocation 注入公司统一时区，所有考勤时间计算都基于该时区
func InitLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("invalid org timezone %q: %w", name, err)
	}

	locMu.Lock()
	orgLocation = loc
	locMu.Unlock()
	return nil
}

// Location 返回公司统一时区，未注入时退回本地时区
func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return orgLocation
}

// Now 返回公司时区下的当前时间
func Now() time.Time {
	return time.Now().In(Location())
}

// DayOf 返回 t 所在自然日的零点（公司时区）
func DayOf(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location())
}

// DateString 返回 t 的日期字符串（2006-01-02，公司时区）
func DateString(t time.Time) string {
	return t.In(Location()).Format("2006-01-02")
}

// ParseDate 解析日期字符串（格式：2006-01-02）为公司时区的零点
func ParseDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, Location())
}

// ParseTime 解析时间字符串（格式：HH:MM:SS）并应用到指定日期
func ParseTime(timeStr string, date time.Time) (time.Time, error) {
	if timeStr == "" {
		return date, nil
	}

	parsedTime, err := time.Parse("15:04:05", timeStr)
	if err != nil {
		return date, err
	}

	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		parsedTime.Hour(),
		parsedTime.Minute(),
		parsedTime.Second(),
		0,
		date.Location(),
	), nil
}

// OverlapSeconds 计算两个时间区间的重叠秒数，不重叠返回 0。
// 未闭合区间（还在进行中的工作段/休息段）由调用方先替换成 now 再传入。
func OverlapSeconds(aStart, aEnd, bStart, bEnd time.Time) int64 {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}

	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}

	if !end.After(start) {
		return 0
	}

	return int64(end.Sub(start) / time.Second)
}

// FormatDuration 将秒数格式化为 HH:MM:SS，负数统一返回 "00:00:00"
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseDuration 解析 HH:MM:SS 字符串为秒数，与 FormatDuration 互逆
func ParseDuration(text string) (int64, error) {
	var h, m, s int64
	if _, err := fmt.Sscanf(text, "%d:%d:%d", &h, &m, &s); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", text, err)
	}

	if h < 0 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid duration %q", text)
	}

	return h*3600 + m*60 + s, nil
}
