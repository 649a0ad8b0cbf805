package schedule

// Grid 7 列 × 24 行的周视图
type Grid struct {
	Hours   []string `json:"hours"`
	Columns []Column `json:"columns"`
}

// Column 某一天的列：24 个单元格 + 该天所有时间段块
type Column struct {
	Day    Day     `json:"day"`
	Label  string  `json:"label"`
	Cells  []Cell  `json:"cells"`
	Blocks []Block `json:"blocks"`
}

// Cell 单元格（day, hour）及其占用者
type Cell struct {
	Time       string `json:"time"`
	OccupantID string `json:"occupant_id,omitempty"`
}

// Block 时间段在列中的绘制块；时间无法解析时 Invalid=true 且无几何信息
type Block struct {
	Slot     TimeSlot `json:"slot"`
	Geometry Geometry `json:"geometry"`
	Invalid  bool     `json:"invalid,omitempty"`
}

// BuildGrid 根据时间段列表构建整周网格
func BuildGrid(slots []TimeSlot) Grid {
	hours := HourLabels()
	grid := Grid{Hours: hours, Columns: make([]Column, 0, len(Days))}

	for _, day := range Days {
		col := Column{
			Day:    day,
			Label:  day.Label(),
			Cells:  make([]Cell, 0, len(hours)),
			Blocks: []Block{},
		}

		for _, h := range hours {
			cell := Cell{Time: h}
			// 行标签均为合法时间，忽略错误
			if slot, ok, _ := SlotAt(slots, day, h); ok {
				cell.OccupantID = slot.ID
			}
			col.Cells = append(col.Cells, cell)
		}

		for _, slot := range slots {
			if slot.Day != day {
				continue
			}
			geo, err := Place(slot)
			col.Blocks = append(col.Blocks, Block{Slot: slot, Geometry: geo, Invalid: err != nil})
		}

		grid.Columns = append(grid.Columns, col)
	}

	return grid
}

// Overlapping 返回与候选时间段在同一天且区间相交的时间段（排除 exceptID）
// 任一方时间无法解析时视为不相交
func Overlapping(slots []TimeSlot, candidate TimeSlot, exceptID string) []TimeSlot {
	cs, ce, err := slotBounds(candidate)
	if err != nil {
		return nil
	}
	var hits []TimeSlot
	for _, slot := range slots {
		if slot.ID == exceptID || slot.Day != candidate.Day {
			continue
		}
		s, e, err := slotBounds(slot)
		if err != nil {
			continue
		}
		if s.Minutes() < ce.Minutes() && cs.Minutes() < e.Minutes() {
			hits = append(hits, slot)
		}
	}
	return hits
}
