package schedule

import "fmt"

// ── 网格定位 ──────────────────────────────────────────────
//
// 网格按固定比例绘制：1 小时 = 60 个纵向单位，共 24 行，从 00:00 开始。
// 占用判定使用半开区间 [start, end)，同日比较，无跨午夜处理。
// 重叠的时间段不做错位排布，直接在同一列中叠放。
// ─────────────────────────────────────────────────────────────

const (
	// UnitsPerHour 每小时对应的纵向单位（像素）
	UnitsPerHour = 60
	// HoursPerDay 网格行数
	HoursPerDay = 24
)

// Geometry 时间段在网格列中的纵向位置
type Geometry struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// SlotAt 查找在 day 的 at 时刻占用网格的时间段
//
// 线性扫描，返回第一个满足 start ≤ at < end 的时间段。
// 自身时间无法解析的时间段被跳过；at 无法解析时返回 ErrInvalidClock。
func SlotAt(slots []TimeSlot, day Day, at string) (TimeSlot, bool, error) {
	q, err := ParseClock(at)
	if err != nil {
		return TimeSlot{}, false, err
	}
	for _, slot := range slots {
		if slot.Day != day {
			continue
		}
		start, end, err := slotBounds(slot)
		if err != nil {
			continue
		}
		if start.Minutes() <= q.Minutes() && q.Minutes() < end.Minutes() {
			return slot, true, nil
		}
	}
	return TimeSlot{}, false, nil
}

// Place 计算时间段的 top 与 height
//
// top = (时 + 分/60) * 60，height = (结束小时 - 开始小时) * 60。
// 结束早于开始时 height 为负，调用方自行处理。
func Place(slot TimeSlot) (Geometry, error) {
	start, end, err := slotBounds(slot)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		Top:    start.Hours() * UnitsPerHour,
		Height: (end.Hours() - start.Hours()) * UnitsPerHour,
	}, nil
}

// HourLabels 网格行标签 "00:00" ~ "23:00"
func HourLabels() []string {
	labels := make([]string, HoursPerDay)
	for h := range labels {
		labels[h] = Clock{Hour: h}.String()
	}
	return labels
}

// DraftFor 点击空白单元格时的新建预填值
// 结束时间为开始小时 + 1，但不超过 23:00
func DraftFor(day Day, at string) (SlotInput, error) {
	c, err := ParseClock(at)
	if err != nil {
		return SlotInput{}, err
	}
	endHour := min(c.Hour+1, HoursPerDay-1)
	return SlotInput{
		Day:       day,
		StartTime: c.String(),
		EndTime:   Clock{Hour: endHour}.String(),
		Color:     Palette[0].Value,
	}, nil
}

func slotBounds(slot TimeSlot) (Clock, Clock, error) {
	start, err := ParseClock(slot.StartTime)
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("开始时间 %q: %w", slot.StartTime, err)
	}
	end, err := ParseClock(slot.EndTime)
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("结束时间 %q: %w", slot.EndTime, err)
	}
	return start, end, nil
}
