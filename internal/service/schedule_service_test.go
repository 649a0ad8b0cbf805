package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"schedule-maker/backend/config"
	"schedule-maker/backend/internal/dto"
	"schedule-maker/backend/internal/schedule"
)

func setupTestScheduleService(allowOverlap bool) (ScheduleService, *schedule.Registry) {
	registry := schedule.NewRegistry()
	cfg := &config.ScheduleConfig{AllowOverlap: allowOverlap}
	return NewScheduleService(cfg, registry, zap.NewNop()), registry
}

func createReq(day, start, end, title string) *dto.CreateTimeSlotRequest {
	return &dto.CreateTimeSlotRequest{Day: day, StartTime: start, EndTime: end, Title: title}
}

func strPtr(s string) *string { return &s }

// ────────────────────── Create ──────────────────────

func TestScheduleService_Create_Success(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()

	slot, err := svc.Create(ctx, "u1", &dto.CreateTimeSlotRequest{
		Day: "Monday", StartTime: " 09:00 ", EndTime: "10:30", Title: " Math ", Color: "#10B981",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if slot.ID == "" {
		t.Error("应生成 ID")
	}
	if slot.Day != schedule.Monday {
		t.Errorf("星期应被规范化为 monday，实际=%s", slot.Day)
	}
	if slot.StartTime != "09:00" || slot.EndTime != "10:30" {
		t.Errorf("时间应规范为 HH:mm，实际=%s-%s", slot.StartTime, slot.EndTime)
	}
	if slot.Title != "Math" {
		t.Errorf("标题应去除首尾空白，实际=%q", slot.Title)
	}
	if slot.Color != "#10B981" {
		t.Errorf("应保留请求中的颜色，实际=%s", slot.Color)
	}

	snap := svc.Snapshot(ctx, "u1")
	if len(snap.Slots) != 1 {
		t.Errorf("期望 1 个时间段，实际=%d", len(snap.Slots))
	}
}

func TestScheduleService_Create_RandomColor(t *testing.T) {
	svc, _ := setupTestScheduleService(true)

	slot, err := svc.Create(context.Background(), "u1", createReq("friday", "08:00", "09:00", "晨读"))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if !schedule.InPalette(slot.Color) {
		t.Errorf("未指定颜色时应从调色板中随机选取，实际=%s", slot.Color)
	}
}

func TestScheduleService_Create_ValidationErrors(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *dto.CreateTimeSlotRequest
		want error
	}{
		{"非法星期", createReq("someday", "09:00", "10:00", "x"), ErrInvalidDay},
		{"非法开始时间", createReq("monday", "9", "10:00", "x"), ErrInvalidClock},
		{"非法结束时间", createReq("monday", "09:00", "24:00", "x"), ErrInvalidClock},
		{"一位小时", createReq("monday", "9:00", "10:00", "x"), ErrInvalidClock},
		{"带正号的时间", createReq("monday", "+9:+0", "09:30", "x"), ErrInvalidClock},
		{"带正号的分钟", createReq("monday", "09:+5", "10:00", "x"), ErrInvalidClock},
		{"带负号的时间", createReq("monday", "-0:30", "10:00", "x"), ErrInvalidClock},
		{"开始晚于结束", createReq("monday", "10:00", "09:00", "x"), ErrInvalidTimeRange},
		{"开始等于结束", createReq("monday", "10:00", "10:00", "x"), ErrInvalidTimeRange},
		{"空标题", createReq("monday", "09:00", "10:00", "   "), ErrTitleRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}

	if n := len(svc.Snapshot(ctx, "u1").Slots); n != 0 {
		t.Errorf("校验失败时不应写入，实际=%d", n)
	}
}

func TestScheduleService_Create_Overlap(t *testing.T) {
	ctx := context.Background()

	allow, _ := setupTestScheduleService(true)
	_, _ = allow.Create(ctx, "u1", createReq("monday", "09:00", "11:00", "A"))
	if _, err := allow.Create(ctx, "u1", createReq("monday", "10:00", "12:00", "B")); err != nil {
		t.Errorf("允许重叠时应成功: %v", err)
	}

	deny, _ := setupTestScheduleService(false)
	_, _ = deny.Create(ctx, "u1", createReq("monday", "09:00", "11:00", "A"))
	if _, err := deny.Create(ctx, "u1", createReq("monday", "10:00", "12:00", "B")); !errors.Is(err, ErrSlotOverlap) {
		t.Errorf("禁止重叠时期望 ErrSlotOverlap，实际: %v", err)
	}
	// 首尾相接不算重叠
	if _, err := deny.Create(ctx, "u1", createReq("monday", "11:00", "12:00", "C")); err != nil {
		t.Errorf("首尾相接应允许: %v", err)
	}
	// 不同日不冲突
	if _, err := deny.Create(ctx, "u1", createReq("tuesday", "09:00", "11:00", "D")); err != nil {
		t.Errorf("不同日应允许: %v", err)
	}
}

func TestScheduleService_UsersIsolated(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()

	_, _ = svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))
	if n := len(svc.Snapshot(ctx, "u2").Slots); n != 0 {
		t.Errorf("不同用户的课表应相互隔离，u2 实际=%d", n)
	}
}

// ────────────────────── Update ──────────────────────

func TestScheduleService_Update(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))

	updated, err := svc.Update(ctx, "u1", slot.ID, &dto.UpdateTimeSlotRequest{
		EndTime: strPtr("11:00"),
		Title:   strPtr("B"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.EndTime != "11:00" || updated.Title != "B" {
		t.Errorf("更新未生效: %+v", updated)
	}
	if updated.StartTime != "09:00" || updated.ID != slot.ID {
		t.Errorf("未提供的字段与 ID 应保持不变: %+v", updated)
	}
}

func TestScheduleService_Update_EmptyPatch(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))

	got, err := svc.Update(ctx, "u1", slot.ID, &dto.UpdateTimeSlotRequest{})
	if err != nil {
		t.Fatalf("空更新应成功: %v", err)
	}
	if *got != *slot {
		t.Errorf("空更新应返回原值，期望 %+v，实际 %+v", *slot, *got)
	}
}

func TestScheduleService_Update_Errors(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))

	if _, err := svc.Update(ctx, "u1", "missing", &dto.UpdateTimeSlotRequest{Title: strPtr("x")}); !errors.Is(err, ErrTimeSlotNotFound) {
		t.Errorf("期望 ErrTimeSlotNotFound，实际: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", slot.ID, &dto.UpdateTimeSlotRequest{StartTime: strPtr("10:30")}); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("期望 ErrInvalidTimeRange，实际: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", slot.ID, &dto.UpdateTimeSlotRequest{EndTime: strPtr("+9:59")}); !errors.Is(err, ErrInvalidClock) {
		t.Errorf("期望 ErrInvalidClock，实际: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", slot.ID, &dto.UpdateTimeSlotRequest{Day: strPtr("funday")}); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("期望 ErrInvalidDay，实际: %v", err)
	}

	got, _ := svc.Get(ctx, "u1", slot.ID)
	if got.StartTime != "09:00" || got.Day != schedule.Monday {
		t.Errorf("校验失败时不应修改原值: %+v", got)
	}
}

func TestScheduleService_Update_OverlapExcludesSelf(t *testing.T) {
	svc, _ := setupTestScheduleService(false)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))
	_, _ = svc.Create(ctx, "u1", createReq("monday", "11:00", "12:00", "B"))

	if _, err := svc.Update(ctx, "u1", a.ID, &dto.UpdateTimeSlotRequest{EndTime: strPtr("10:30")}); err != nil {
		t.Errorf("与自身重叠不应拒绝: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", a.ID, &dto.UpdateTimeSlotRequest{EndTime: strPtr("11:30")}); !errors.Is(err, ErrSlotOverlap) {
		t.Errorf("期望 ErrSlotOverlap，实际: %v", err)
	}
}

// ────────────────────── 并发 ──────────────────────

func TestScheduleService_Create_ConcurrentOverlapRejected(t *testing.T) {
	const workers = 8
	ctx := context.Background()

	for trial := 0; trial < 200; trial++ {
		svc, _ := setupTestScheduleService(false)

		var wg sync.WaitGroup
		errs := make([]error, workers)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))
			}(i)
		}
		close(start)
		wg.Wait()

		if n := len(svc.Snapshot(ctx, "u1").Slots); n != 1 {
			t.Fatalf("第 %d 轮：禁止重叠时并发创建应只写入 1 个，实际=%d", trial, n)
		}
		rejected := 0
		for _, err := range errs {
			if errors.Is(err, ErrSlotOverlap) {
				rejected++
			}
		}
		if rejected != workers-1 {
			t.Fatalf("第 %d 轮：期望 %d 个 ErrSlotOverlap，实际=%d", trial, workers-1, rejected)
		}
	}
}

func TestScheduleService_Update_ConcurrentPatchesKeepRange(t *testing.T) {
	ctx := context.Background()

	for trial := 0; trial < 200; trial++ {
		svc, _ := setupTestScheduleService(true)
		slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "12:00", "A"))

		// 两个补丁各自合法，合并后开始晚于结束
		patches := []*dto.UpdateTimeSlotRequest{
			{StartTime: strPtr("11:00")},
			{EndTime: strPtr("10:00")},
		}
		var wg sync.WaitGroup
		start := make(chan struct{})
		for _, p := range patches {
			wg.Add(1)
			go func(p *dto.UpdateTimeSlotRequest) {
				defer wg.Done()
				<-start
				_, _ = svc.Update(ctx, "u1", slot.ID, p)
			}(p)
		}
		close(start)
		wg.Wait()

		got, _ := svc.Get(ctx, "u1", slot.ID)
		if got.StartTime >= got.EndTime {
			t.Fatalf("第 %d 轮：并发更新后开始时间应早于结束时间，实际=%s-%s", trial, got.StartTime, got.EndTime)
		}
	}
}

// ────────────────────── Delete / Select ──────────────────────

func TestScheduleService_Delete_ClearsSelection(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))

	if _, err := svc.Select(ctx, "u1", &slot.ID); err != nil {
		t.Fatalf("Select 应成功: %v", err)
	}
	if err := svc.Delete(ctx, "u1", slot.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	snap := svc.Snapshot(ctx, "u1")
	if snap.Selected != nil {
		t.Error("删除选中项后应取消选中")
	}
	if err := svc.Delete(ctx, "u1", slot.ID); !errors.Is(err, ErrTimeSlotNotFound) {
		t.Errorf("重复删除期望 ErrTimeSlotNotFound，实际: %v", err)
	}
}

func TestScheduleService_Select(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))

	if _, err := svc.Select(ctx, "u1", strPtr("missing")); !errors.Is(err, ErrTimeSlotNotFound) {
		t.Errorf("期望 ErrTimeSlotNotFound，实际: %v", err)
	}

	got, err := svc.Select(ctx, "u1", &slot.ID)
	if err != nil || got.ID != slot.ID {
		t.Fatalf("Select 应返回选中项: %v", err)
	}

	got, err = svc.Select(ctx, "u1", nil)
	if err != nil || got != nil {
		t.Errorf("nil 应取消选中: %v %v", got, err)
	}
	if svc.Snapshot(ctx, "u1").Selected != nil {
		t.Error("取消选中后 Selected 应为 nil")
	}
}

func TestScheduleService_EditingAndClear(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:00", "A"))
	_, _ = svc.Select(ctx, "u1", &slot.ID)

	svc.SetEditing(ctx, "u1", true)
	if !svc.Snapshot(ctx, "u1").Editing {
		t.Error("编辑标记应为 true")
	}

	svc.Clear(ctx, "u1")
	snap := svc.Snapshot(ctx, "u1")
	if len(snap.Slots) != 0 || snap.Selected != nil || snap.Editing {
		t.Errorf("Clear 后应恢复初始状态: %+v", snap)
	}
}

// ────────────────────── 网格 ──────────────────────

func TestScheduleService_CellAt(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:30", "Math"))

	tests := []struct {
		time     string
		occupied bool
	}{
		{"09:00", true},
		{"10:00", true},
		{"10:30", false},
		{"08:59", false},
	}
	for _, tt := range tests {
		resp, err := svc.CellAt(ctx, "u1", &dto.CellQuery{Day: "monday", Time: tt.time})
		if err != nil {
			t.Fatalf("CellAt(%s) 返回错误: %v", tt.time, err)
		}
		if resp.Occupied != tt.occupied {
			t.Errorf("CellAt(%s) 期望 occupied=%v，实际=%v", tt.time, tt.occupied, resp.Occupied)
		}
		if resp.Occupied && resp.Slot.ID != slot.ID {
			t.Errorf("CellAt(%s) 返回了错误的时间段", tt.time)
		}
	}

	if _, err := svc.CellAt(ctx, "u1", &dto.CellQuery{Day: "monday", Time: "9am"}); !errors.Is(err, ErrInvalidClock) {
		t.Errorf("期望 ErrInvalidClock，实际: %v", err)
	}
}

func TestScheduleService_ClickCell(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	slot, _ := svc.Create(ctx, "u1", createReq("monday", "09:00", "10:30", "Math"))

	resp, err := svc.ClickCell(ctx, "u1", &dto.CellQuery{Day: "monday", Time: "10:00"})
	if err != nil {
		t.Fatalf("ClickCell 应成功: %v", err)
	}
	if resp.Action != "selected" || resp.Slot.ID != slot.ID {
		t.Errorf("点击已占用单元格应选中该时间段: %+v", resp)
	}
	if sel := svc.Snapshot(ctx, "u1").Selected; sel == nil || sel.ID != slot.ID {
		t.Error("点击后 Selected 应为该时间段")
	}

	resp, err = svc.ClickCell(ctx, "u1", &dto.CellQuery{Day: "sunday", Time: "23:00"})
	if err != nil {
		t.Fatalf("ClickCell 应成功: %v", err)
	}
	if resp.Action != "create" || resp.Draft == nil {
		t.Fatalf("点击空单元格应返回预填值: %+v", resp)
	}
	if resp.Draft.StartTime != "23:00" || resp.Draft.EndTime != "23:00" {
		t.Errorf("23 点的预填结束时间应截断为 23:00，实际 %s~%s", resp.Draft.StartTime, resp.Draft.EndTime)
	}
	if resp.Draft.Color != schedule.Palette[0].Value {
		t.Errorf("预填颜色应为调色板首色，实际=%s", resp.Draft.Color)
	}
}

func TestScheduleService_Grid(t *testing.T) {
	svc, _ := setupTestScheduleService(true)
	ctx := context.Background()
	_, _ = svc.Create(ctx, "u1", createReq("wednesday", "13:00", "14:00", "A"))

	resp := svc.Grid(ctx, "u1")
	if len(resp.Grid.Columns) != 7 || len(resp.Grid.Hours) != 24 {
		t.Fatalf("网格应为 7 列 × 24 行，实际 %d × %d", len(resp.Grid.Columns), len(resp.Grid.Hours))
	}
	if resp.UnitsPerHour != schedule.UnitsPerHour {
		t.Errorf("期望 UnitsPerHour=%d，实际=%d", schedule.UnitsPerHour, resp.UnitsPerHour)
	}
	wed := resp.Grid.Columns[2]
	if len(wed.Blocks) != 1 || wed.Blocks[0].Geometry.Top != 780 {
		t.Errorf("周三应有 1 个块且 top=780: %+v", wed.Blocks)
	}
}
