package dto

import "schedule-maker/backend/internal/schedule"

// ── 课表模块 DTO ──

// CreateTimeSlotRequest 创建时间段请求
type CreateTimeSlotRequest struct {
	Day         string `json:"day"         binding:"required"`
	StartTime   string `json:"start_time"  binding:"required"` // "09:00"
	EndTime     string `json:"end_time"    binding:"required"` // "10:30"
	Title       string `json:"title"       binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color"       binding:"omitempty,hexcolor"`
}

// UpdateTimeSlotRequest 更新时间段请求（仅更新非 nil 字段）
type UpdateTimeSlotRequest struct {
	Day         *string `json:"day"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Title       *string `json:"title"       binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Color       *string `json:"color"       binding:"omitempty,hexcolor"`
}

// SelectSlotRequest 设置选中项；ID 为 null 表示取消选中
type SelectSlotRequest struct {
	ID *string `json:"id"`
}

// EditingRequest 设置编辑标记
type EditingRequest struct {
	Editing bool `json:"editing"`
}

// CellQuery 单元格定位参数
type CellQuery struct {
	Day  string `form:"day"  json:"day"  binding:"required"`
	Time string `form:"time" json:"time" binding:"required"`
}

// ── 课表模块响应 ──

// CellResponse 单元格查询结果
type CellResponse struct {
	Day      string             `json:"day"`
	Time     string             `json:"time"`
	Occupied bool               `json:"occupied"`
	Slot     *schedule.TimeSlot `json:"slot,omitempty"`
}

// CellClickResponse 单元格点击结果：已占用则选中该时间段，否则返回新建预填值
type CellClickResponse struct {
	Action string             `json:"action"` // "selected" | "create"
	Slot   *schedule.TimeSlot `json:"slot,omitempty"`
	Draft  *DraftResponse     `json:"draft,omitempty"`
}

// DraftResponse 新建表单预填值
type DraftResponse struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
}

// GridResponse 整周网格
type GridResponse struct {
	Grid         schedule.Grid           `json:"grid"`
	UnitsPerHour int                     `json:"units_per_hour"`
	Palette      []schedule.PaletteColor `json:"palette"`
}

// ImportResponse ICS 导入结果
type ImportResponse struct {
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError 单条导入失败原因
type ImportError struct {
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}
