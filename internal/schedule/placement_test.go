package schedule

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("ParseClock 应成功: %v", err)
	}
	if c.Hour != 9 || c.Minute != 30 || c.Minutes() != 570 {
		t.Errorf("期望 09:30，实际=%+v", c)
	}
	if c.String() != "09:30" {
		t.Errorf("期望格式化为 09:30，实际=%s", c.String())
	}
	if c, err := ParseClock(" 23:59 "); err != nil || c.Minutes() != 23*60+59 {
		t.Errorf("首尾空白应忽略，实际=%+v err=%v", c, err)
	}

	for _, bad := range []string{
		"", "9", "24:00", "12:60", "ab:cd", "12:5", "-1:00",
		"9:00", "09:+5", "+9:05", "-0:30", "+9:+0", "0x:10", "09-30", "09:300",
	} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidClock) {
			t.Errorf("%q 期望 ErrInvalidClock，实际: %v", bad, err)
		}
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay(" Monday ")
	if err != nil || d != Monday {
		t.Errorf("期望 monday，实际=%s err=%v", d, err)
	}
	if _, err := ParseDay("funday"); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("期望 ErrInvalidDay，实际: %v", err)
	}
	if Sunday.Index() != 6 || Day("x").Index() != -1 {
		t.Error("Index 计算错误")
	}
}

// ── SlotAt 测试 ──

func TestSlotAt_HalfOpenInterval(t *testing.T) {
	slots := []TimeSlot{{ID: "a", Day: Monday, StartTime: "09:00", EndTime: "10:00"}}

	got, ok, err := SlotAt(slots, Monday, "09:00")
	if err != nil || !ok || got.ID != "a" {
		t.Errorf("monday 09:00 应命中 a，实际 ok=%v id=%s err=%v", ok, got.ID, err)
	}

	if _, ok, _ := SlotAt(slots, Monday, "10:00"); ok {
		t.Error("monday 10:00 为结束时刻，不应命中")
	}

	if _, ok, _ := SlotAt(slots, Tuesday, "09:00"); ok {
		t.Error("tuesday 09:00 不应命中")
	}

	if _, ok, _ := SlotAt(slots, Monday, "09:59"); !ok {
		t.Error("monday 09:59 应命中")
	}
}

func TestSlotAt_FirstMatchWins(t *testing.T) {
	slots := []TimeSlot{
		{ID: "first", Day: Friday, StartTime: "08:00", EndTime: "12:00"},
		{ID: "second", Day: Friday, StartTime: "09:00", EndTime: "10:00"},
	}

	got, ok, _ := SlotAt(slots, Friday, "09:30")
	if !ok || got.ID != "first" {
		t.Errorf("重叠时应返回第一个匹配项，实际=%s", got.ID)
	}
}

func TestSlotAt_SkipsMalformedSlots(t *testing.T) {
	slots := []TimeSlot{
		{ID: "bad", Day: Monday, StartTime: "nine", EndTime: "10:00"},
		{ID: "good", Day: Monday, StartTime: "09:00", EndTime: "10:00"},
	}

	got, ok, err := SlotAt(slots, Monday, "09:15")
	if err != nil || !ok || got.ID != "good" {
		t.Errorf("应跳过无法解析的时间段，实际 id=%s err=%v", got.ID, err)
	}
}

func TestSlotAt_InvalidQuery(t *testing.T) {
	if _, _, err := SlotAt(nil, Monday, "25:00"); !errors.Is(err, ErrInvalidClock) {
		t.Errorf("期望 ErrInvalidClock，实际: %v", err)
	}
}

// ── Place 测试 ──

func TestPlace_Geometry(t *testing.T) {
	geo, err := Place(TimeSlot{StartTime: "09:00", EndTime: "10:30"})
	if err != nil {
		t.Fatalf("Place 应成功: %v", err)
	}
	if geo.Top != 540 {
		t.Errorf("期望 top=540，实际=%v", geo.Top)
	}
	if geo.Height != 90 {
		t.Errorf("期望 height=90，实际=%v", geo.Height)
	}
}

func TestPlace_EndBeforeStartIsNegative(t *testing.T) {
	geo, err := Place(TimeSlot{StartTime: "23:00", EndTime: "01:00"})
	if err != nil {
		t.Fatalf("Place 应成功: %v", err)
	}
	if geo.Height != -1320 {
		t.Errorf("期望 height=-1320，实际=%v", geo.Height)
	}
}

func TestPlace_Malformed(t *testing.T) {
	if _, err := Place(TimeSlot{StartTime: "09:00", EndTime: "late"}); !errors.Is(err, ErrInvalidClock) {
		t.Errorf("期望 ErrInvalidClock，实际: %v", err)
	}
}

// ── 网格 / 预填 测试 ──

func TestHourLabels(t *testing.T) {
	labels := HourLabels()
	if len(labels) != 24 || labels[0] != "00:00" || labels[23] != "23:00" {
		t.Errorf("行标签错误: %v", labels)
	}
}

func TestDraftFor(t *testing.T) {
	d, err := DraftFor(Wednesday, "14:00")
	if err != nil {
		t.Fatalf("DraftFor 应成功: %v", err)
	}
	if d.StartTime != "14:00" || d.EndTime != "15:00" || d.Day != Wednesday {
		t.Errorf("预填值错误: %+v", d)
	}
	if d.Color != Palette[0].Value {
		t.Errorf("期望默认颜色 %s，实际=%s", Palette[0].Value, d.Color)
	}

	late, _ := DraftFor(Sunday, "23:00")
	if late.EndTime != "23:00" {
		t.Errorf("结束时间不应超过 23:00，实际=%s", late.EndTime)
	}
}

func TestBuildGrid(t *testing.T) {
	slots := []TimeSlot{
		{ID: "a", Day: Monday, StartTime: "09:00", EndTime: "11:00"},
		{ID: "b", Day: Sunday, StartTime: "bad", EndTime: "11:00"},
	}
	grid := BuildGrid(slots)

	if len(grid.Columns) != 7 || len(grid.Hours) != 24 {
		t.Fatalf("期望 7 列 24 行，实际 %d 列 %d 行", len(grid.Columns), len(grid.Hours))
	}

	mon := grid.Columns[0]
	if mon.Cells[9].OccupantID != "a" || mon.Cells[10].OccupantID != "a" {
		t.Error("09:00 与 10:00 单元格应被 a 占用")
	}
	if mon.Cells[11].OccupantID != "" {
		t.Error("11:00 单元格不应被占用")
	}
	if len(mon.Blocks) != 1 || mon.Blocks[0].Geometry.Height != 120 {
		t.Errorf("周一列块错误: %+v", mon.Blocks)
	}

	sun := grid.Columns[6]
	if len(sun.Blocks) != 1 || !sun.Blocks[0].Invalid {
		t.Error("无法解析的时间段应标记为 Invalid")
	}
}

func TestOverlapping(t *testing.T) {
	slots := []TimeSlot{
		{ID: "a", Day: Monday, StartTime: "09:00", EndTime: "10:00"},
		{ID: "b", Day: Monday, StartTime: "10:00", EndTime: "11:00"},
		{ID: "c", Day: Tuesday, StartTime: "09:00", EndTime: "10:00"},
	}

	hits := Overlapping(slots, TimeSlot{Day: Monday, StartTime: "09:30", EndTime: "10:30"}, "")
	if len(hits) != 2 {
		t.Errorf("期望与 a、b 相交，实际=%v", hits)
	}

	hits = Overlapping(slots, TimeSlot{Day: Monday, StartTime: "10:00", EndTime: "10:30"}, "b")
	if len(hits) != 0 {
		t.Errorf("首尾相接不算相交且应排除自身，实际=%v", hits)
	}
}
