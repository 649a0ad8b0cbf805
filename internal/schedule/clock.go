package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidClock 时间不是合法的 "HH:mm"
var ErrInvalidClock = errors.New("无效的时间格式，应为 HH:mm")

// Clock 一天内的时刻（同日，无时区）
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock 解析 "HH:mm"，两位数字的小时 00-23 与分钟 00-59
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, ErrInvalidClock
	}
	h, ok := twoDigits(s[0:2])
	if !ok || h > 23 {
		return Clock{}, ErrInvalidClock
	}
	m, ok := twoDigits(s[3:5])
	if !ok || m > 59 {
		return Clock{}, ErrInvalidClock
	}
	return Clock{Hour: h, Minute: m}, nil
}

// twoDigits 仅接受两个 ASCII 数字，不接受符号
func twoDigits(s string) (int, bool) {
	if !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Minutes 距 00:00 的分钟数
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// Hours 以小时计的浮点值，如 10:30 → 10.5
func (c Clock) Hours() float64 { return float64(c.Hour) + float64(c.Minute)/60 }

// String 格式化为零填充的 "HH:mm"
func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }
