package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"schedule-maker/backend/internal/dto"
	"schedule-maker/backend/internal/schedule"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSlots      = errors.New("课表中暂无时间段")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导入导出业务接口
//
// 设计说明：
//   - Excel：Sheet "课表" 为 24 行 × 7 列网格，Sheet "明细" 为时间段列表
//   - iCalendar：每个时间段一个 FREQ=WEEKLY 的 VEVENT，使用浮动时间（不带时区）
//   - ICS 导入逐条走 ScheduleService.Create，复用同一套校验
type ExportService interface {
	ExportXLSX(ctx context.Context, userID string) (*bytes.Buffer, string, error)
	ExportICS(ctx context.Context, userID string) ([]byte, string, error)
	ImportICS(ctx context.Context, userID string, content []byte) (*dto.ImportResponse, error)
}

type exportService struct {
	registry *schedule.Registry
	schedule ScheduleService
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(registry *schedule.Registry, scheduleSvc ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{
		registry: registry,
		schedule: scheduleSvc,
		logger:   logger,
		now:      time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "课表"：A 列为 00:00 ~ 23:00，B~H 列为周一 ~ 周日
//     被占用的单元格填写标题并以时间段颜色填充
//   - Sheet "明细"：星期 | 开始 | 结束 | 标题 | 描述 | 颜色（按插入顺序）

func (s *exportService) ExportXLSX(_ context.Context, userID string) (*bytes.Buffer, string, error) {
	slots := s.registry.For(userID).Slots()
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	f := excelize.NewFile()
	defer f.Close()

	const gridSheet = "课表"
	const listSheet = "明细"

	idx, err := f.NewSheet(gridSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	if _, err := f.NewSheet(listSheet); err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── 网格 ──
	grid := schedule.BuildGrid(slots)
	byID := make(map[string]schedule.TimeSlot, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
	}
	colorStyles := make(map[string]int)

	f.SetColWidth(gridSheet, "A", "A", 8)
	f.SetColWidth(gridSheet, "B", colName(len(grid.Columns)+1), 18)

	f.SetCellValue(gridSheet, "A1", "时间")
	for i, col := range grid.Columns {
		f.SetCellValue(gridSheet, cell(colName(i+2), 1), col.Label)
	}
	f.SetCellStyle(gridSheet, "A1", cell(colName(len(grid.Columns)+1), 1), headerStyle)

	for r, hour := range grid.Hours {
		row := r + 2
		f.SetCellValue(gridSheet, cell("A", row), hour)
		for c, col := range grid.Columns {
			occ := col.Cells[r].OccupantID
			if occ == "" {
				continue
			}
			slot := byID[occ]
			ref := cell(colName(c+2), row)
			f.SetCellValue(gridSheet, ref, slot.Title)

			styleID, ok := colorStyles[slot.Color]
			if !ok {
				styleID, err = f.NewStyle(&excelize.Style{
					Fill: excelize.Fill{Type: "pattern", Color: []string{fillColor(slot.Color)}, Pattern: 1},
				})
				if err != nil {
					styleID = 0
				}
				colorStyles[slot.Color] = styleID
			}
			if styleID != 0 {
				f.SetCellStyle(gridSheet, ref, ref, styleID)
			}
		}
	}

	// ── 明细 ──
	headers := []string{"星期", "开始", "结束", "标题", "描述", "颜色"}
	for i, h := range headers {
		f.SetCellValue(listSheet, cell(colName(i+1), 1), h)
	}
	f.SetCellStyle(listSheet, "A1", cell(colName(len(headers)), 1), headerStyle)
	f.SetColWidth(listSheet, "D", "E", 28)

	for i, slot := range slots {
		row := i + 2
		f.SetCellValue(listSheet, cell("A", row), slot.Day.Label())
		f.SetCellValue(listSheet, cell("B", row), slot.StartTime)
		f.SetCellValue(listSheet, cell("C", row), slot.EndTime)
		f.SetCellValue(listSheet, cell("D", row), slot.Title)
		f.SetCellValue(listSheet, cell("E", row), slot.Description)
		f.SetCellValue(listSheet, cell("F", row), slot.Color)
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

// colName 列号转列名（1 → A）
func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

// cell 组合单元格坐标
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// fillColor 非 #RRGGBB 的颜色回退为调色板首色
func fillColor(color string) string {
	if len(color) == 7 && strings.HasPrefix(color, "#") {
		return color
	}
	return schedule.Palette[0].Value
}
