package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jinzhu/now"
	"go.uber.org/zap"

	"schedule-maker/backend/internal/dto"
	"schedule-maker/backend/internal/schedule"
)

// ── iCalendar 编解码 ──────────────────────────────────────────
//
// 导出：
//   - 以"当前周的周一"为锚点，每个时间段映射为该周对应日期的一个 VEVENT
//   - RRULE:FREQ=WEEKLY 表达按周重复
//   - DTSTART/DTEND 使用浮动时间（无 Z、无 TZID）
//
// 导入：
//   - 仅取 DTSTART/DTEND 的星期与时分，忽略日期、时区与 RRULE
//   - 全天事件、跨天事件、缺少 DTEND 的事件跳过
// ─────────────────────────────────────────────────────────────

const (
	icsProductID     = "-//schedule-maker//weekly schedule//EN"
	icsFloatingFmt   = "20060102T150405"
	icsMaxImportSize = 2 * 1024 * 1024
)

var ErrImportParse = errors.New("ICS 格式解析失败")

// icsColorProperty RFC 7986 COLOR
const icsColorProperty = ics.ComponentProperty("COLOR")

// hexColorRe 导入时接受 #RGB 与 #RRGGBB，其余颜色名丢弃后随机分配
var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ExportICS 导出课表为 iCalendar
func (s *exportService) ExportICS(_ context.Context, userID string) ([]byte, string, error) {
	slots := s.registry.For(userID).Slots()
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	stamp := s.now()
	monday := weekStart(stamp)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, slot := range slots {
		start, err := schedule.ParseClock(slot.StartTime)
		if err != nil {
			continue
		}
		end, err := schedule.ParseClock(slot.EndTime)
		if err != nil {
			continue
		}
		date := monday.AddDate(0, 0, slot.Day.Index())

		evt := cal.AddEvent(slot.ID + "@schedule-maker")
		evt.SetDtStampTime(stamp.UTC())
		evt.SetProperty(ics.ComponentPropertyDtStart, atClock(date, start).Format(icsFloatingFmt))
		evt.SetProperty(ics.ComponentPropertyDtEnd, atClock(date, end).Format(icsFloatingFmt))
		evt.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
		evt.SetSummary(slot.Title)
		if slot.Description != "" {
			evt.SetDescription(slot.Description)
		}
		if slot.Color != "" {
			evt.SetProperty(icsColorProperty, slot.Color)
		}
	}

	filename := fmt.Sprintf("schedule_%s.ics", stamp.Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

// ImportICS 将 ICS 中的定时事件逐条加入课表
func (s *exportService) ImportICS(ctx context.Context, userID string, content []byte) (*dto.ImportResponse, error) {
	if len(content) > icsMaxImportSize {
		return nil, fmt.Errorf("%w: 文件过大", ErrImportParse)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportParse, err)
	}

	resp := &dto.ImportResponse{}
	for _, evt := range cal.Events() {
		resp.Total++

		summary := propValue(evt, ics.ComponentPropertySummary)
		req, reason := eventToRequest(evt)
		if reason != "" {
			resp.Skipped++
			resp.Errors = append(resp.Errors, dto.ImportError{Summary: summary, Reason: reason})
			continue
		}

		if _, err := s.schedule.Create(ctx, userID, req); err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, dto.ImportError{Summary: summary, Reason: err.Error()})
			continue
		}
		resp.Imported++
	}

	s.logger.Info("ICS 导入完成",
		zap.String("user_id", userID),
		zap.Int("total", resp.Total),
		zap.Int("imported", resp.Imported),
	)
	return resp, nil
}

// eventToRequest 将 VEVENT 转为创建请求；无法转换时返回原因
func eventToRequest(evt *ics.VEvent) (*dto.CreateTimeSlotRequest, string) {
	summary := strings.TrimSpace(propValue(evt, ics.ComponentPropertySummary))
	if summary == "" {
		return nil, "缺少 SUMMARY"
	}

	start, ok := parseICSWallClock(evt.GetProperty(ics.ComponentPropertyDtStart))
	if !ok {
		return nil, "DTSTART 缺失或为全天事件"
	}
	end, ok := parseICSWallClock(evt.GetProperty(ics.ComponentPropertyDtEnd))
	if !ok {
		return nil, "DTEND 缺失或为全天事件"
	}
	if start.YearDay() != end.YearDay() || start.Year() != end.Year() {
		return nil, "不支持跨天事件"
	}

	color := strings.TrimSpace(propValue(evt, icsColorProperty))
	if !hexColorRe.MatchString(color) {
		color = ""
	}

	return &dto.CreateTimeSlotRequest{
		Day:         string(weekdayToDay(start.Weekday())),
		StartTime:   start.Format("15:04"),
		EndTime:     end.Format("15:04"),
		Title:       summary,
		Description: propValue(evt, ics.ComponentPropertyDescription),
		Color:       color,
	}, ""
}

// parseICSWallClock 解析带时刻的日期，按书写的墙上时间处理（不做时区换算）
func parseICSWallClock(prop *ics.IANAProperty) (time.Time, bool) {
	if prop == nil {
		return time.Time{}, false
	}
	val := strings.TrimSuffix(strings.TrimSpace(prop.Value), "Z")
	t, err := time.Parse(icsFloatingFmt, val)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	if p := evt.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

var mondayFirst = &now.Config{WeekStartDay: time.Monday}

// weekStart 所在周的周一 00:00
func weekStart(t time.Time) time.Time {
	return mondayFirst.With(t).BeginningOfWeek()
}

func atClock(date time.Time, c schedule.Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

// weekdayToDay time.Weekday (0=Sunday) → schedule.Day
func weekdayToDay(wd time.Weekday) schedule.Day {
	return schedule.Days[(int(wd)+6)%7]
}
