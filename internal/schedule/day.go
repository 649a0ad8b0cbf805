package schedule

import (
	"errors"
	"strings"
)

// ErrInvalidDay 星期取值不在 monday..sunday 范围内
var ErrInvalidDay = errors.New("无效的星期")

// Day 星期枚举（无具体日期，按周隐式重复）
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days 网格列顺序：周一 ~ 周日
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayLabels = map[Day]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// ParseDay 解析星期字符串（忽略大小写与首尾空白）
func ParseDay(s string) (Day, error) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrInvalidDay
	}
	return d, nil
}

// Valid 是否为七个枚举值之一
func (d Day) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Label 展示名称
func (d Day) Label() string { return dayLabels[d] }

// Index 列下标，0=周一；非法值返回 -1
func (d Day) Index() int {
	for i, v := range Days {
		if v == d {
			return i
		}
	}
	return -1
}
