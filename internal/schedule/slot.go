package schedule

import (
	"math/rand"
	"strings"
)

// TimeSlot 周课表中的一个活动块
type TimeSlot struct {
	ID          string `json:"id"`
	Day         Day    `json:"day"`
	StartTime   string `json:"start_time"` // "09:00"
	EndTime     string `json:"end_time"`   // "10:30"
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

// SlotInput 新建时间段的输入（除 ID 外的全部字段）
type SlotInput struct {
	Day         Day
	StartTime   string
	EndTime     string
	Title       string
	Description string
	Color       string // 为空时从调色板随机选取
}

// SlotPatch 局部更新，仅替换非 nil 字段；ID 不可修改
type SlotPatch struct {
	Day         *Day
	StartTime   *string
	EndTime     *string
	Title       *string
	Description *string
	Color       *string
}

// Empty 是否不含任何字段
func (p SlotPatch) Empty() bool {
	return p.Day == nil && p.StartTime == nil && p.EndTime == nil &&
		p.Title == nil && p.Description == nil && p.Color == nil
}

func (p SlotPatch) apply(slot *TimeSlot) {
	if p.Day != nil {
		slot.Day = *p.Day
	}
	if p.StartTime != nil {
		slot.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		slot.EndTime = *p.EndTime
	}
	if p.Title != nil {
		slot.Title = *p.Title
	}
	if p.Description != nil {
		slot.Description = *p.Description
	}
	if p.Color != nil {
		slot.Color = *p.Color
	}
}

// ── 调色板 ──

// PaletteColor 调色板条目
type PaletteColor struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Palette 固定十色调色板，顺序与前端表单一致
var Palette = []PaletteColor{
	{Value: "#3B82F6", Label: "Blue"},
	{Value: "#10B981", Label: "Green"},
	{Value: "#F59E0B", Label: "Yellow"},
	{Value: "#EF4444", Label: "Red"},
	{Value: "#8B5CF6", Label: "Purple"},
	{Value: "#06B6D4", Label: "Cyan"},
	{Value: "#84CC16", Label: "Lime"},
	{Value: "#F97316", Label: "Orange"},
	{Value: "#EC4899", Label: "Pink"},
	{Value: "#6366F1", Label: "Indigo"},
}

// RandomColor 从调色板中伪随机选取一个颜色
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))].Value
}

// InPalette 颜色是否属于调色板（大小写不敏感）
func InPalette(color string) bool {
	for _, c := range Palette {
		if strings.EqualFold(c.Value, color) {
			return true
		}
	}
	return false
}
