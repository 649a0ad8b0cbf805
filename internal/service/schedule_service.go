package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"schedule-maker/backend/config"
	"schedule-maker/backend/internal/dto"
	"schedule-maker/backend/internal/schedule"
)

// ── 课表模块业务错误 ──

var (
	ErrTimeSlotNotFound = errors.New("时间段不存在")
	ErrInvalidDay       = schedule.ErrInvalidDay
	ErrInvalidClock     = schedule.ErrInvalidClock
	ErrInvalidTimeRange = errors.New("开始时间必须早于结束时间")
	ErrTitleRequired    = errors.New("标题不能为空")
	ErrSlotOverlap      = errors.New("与已有时间段重叠")
)

// ScheduleService 课表业务接口
//
// 设计说明：
//   - 每个用户一个内存 Store，由 Registry 按 user_id 分配
//   - Store 本身不做校验；星期、时间格式、起止顺序、标题非空在此处校验
//   - 重叠默认允许（叠放渲染），schedule.allow_overlap=false 时拒绝
type ScheduleService interface {
	Snapshot(ctx context.Context, userID string) schedule.Snapshot
	Create(ctx context.Context, userID string, req *dto.CreateTimeSlotRequest) (*schedule.TimeSlot, error)
	Get(ctx context.Context, userID, id string) (*schedule.TimeSlot, error)
	Update(ctx context.Context, userID, id string, req *dto.UpdateTimeSlotRequest) (*schedule.TimeSlot, error)
	Delete(ctx context.Context, userID, id string) error
	Select(ctx context.Context, userID string, id *string) (*schedule.TimeSlot, error)
	SetEditing(ctx context.Context, userID string, editing bool)
	Clear(ctx context.Context, userID string)
	CellAt(ctx context.Context, userID string, q *dto.CellQuery) (*dto.CellResponse, error)
	ClickCell(ctx context.Context, userID string, q *dto.CellQuery) (*dto.CellClickResponse, error)
	Grid(ctx context.Context, userID string) *dto.GridResponse
}

type scheduleService struct {
	cfg      *config.ScheduleConfig
	registry *schedule.Registry
	logger   *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(cfg *config.ScheduleConfig, registry *schedule.Registry, logger *zap.Logger) ScheduleService {
	return &scheduleService{cfg: cfg, registry: registry, logger: logger}
}

// ────────────────────── Snapshot ──────────────────────

func (s *scheduleService) Snapshot(_ context.Context, userID string) schedule.Snapshot {
	return s.registry.For(userID).Snapshot()
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(_ context.Context, userID string, req *dto.CreateTimeSlotRequest) (*schedule.TimeSlot, error) {
	day, err := schedule.ParseDay(req.Day)
	if err != nil {
		return nil, err
	}
	start, err := normalizeClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := normalizeClock(req.EndTime)
	if err != nil {
		return nil, err
	}

	// 校验与写入在同一把锁内完成
	slot, err := s.registry.For(userID).AddChecked(schedule.SlotInput{
		Day:         day,
		StartTime:   start,
		EndTime:     end,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Color:       req.Color,
	}, s.check(""))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("新增时间段", zap.String("user_id", userID), zap.String("slot_id", slot.ID))
	return &slot, nil
}

// ────────────────────── Get ──────────────────────

func (s *scheduleService) Get(_ context.Context, userID, id string) (*schedule.TimeSlot, error) {
	slot, ok := s.registry.For(userID).Get(id)
	if !ok {
		return nil, ErrTimeSlotNotFound
	}
	return &slot, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(_ context.Context, userID, id string, req *dto.UpdateTimeSlotRequest) (*schedule.TimeSlot, error) {
	store := s.registry.For(userID)
	current, ok := store.Get(id)
	if !ok {
		return nil, ErrTimeSlotNotFound
	}

	patch, err := toPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return &current, nil
	}

	// 以锁内的最新值合并 patch 后整体校验
	updated, ok, err := store.UpdateChecked(id, patch, s.check(id))
	if !ok {
		// 期间被并发删除
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("更新时间段", zap.String("user_id", userID), zap.String("slot_id", id))
	return &updated, nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(_ context.Context, userID, id string) error {
	if !s.registry.For(userID).Delete(id) {
		return ErrTimeSlotNotFound
	}
	s.logger.Debug("删除时间段", zap.String("user_id", userID), zap.String("slot_id", id))
	return nil
}

// ────────────────────── Select ──────────────────────

// Select 设置选中项；id 为 nil 或空字符串时取消选中
func (s *scheduleService) Select(_ context.Context, userID string, id *string) (*schedule.TimeSlot, error) {
	store := s.registry.For(userID)
	if id == nil || *id == "" {
		store.SetSelected("")
		return nil, nil
	}

	slot, ok := store.Get(*id)
	if !ok {
		return nil, ErrTimeSlotNotFound
	}
	store.SetSelected(slot.ID)
	return &slot, nil
}

// ────────────────────── Editing / Clear ──────────────────────

func (s *scheduleService) SetEditing(_ context.Context, userID string, editing bool) {
	s.registry.For(userID).SetEditing(editing)
}

func (s *scheduleService) Clear(_ context.Context, userID string) {
	s.registry.For(userID).Clear()
	s.logger.Debug("清空课表", zap.String("user_id", userID))
}

// ────────────────────── 网格查询 ──────────────────────

func (s *scheduleService) CellAt(_ context.Context, userID string, q *dto.CellQuery) (*dto.CellResponse, error) {
	day, err := schedule.ParseDay(q.Day)
	if err != nil {
		return nil, err
	}

	slot, ok, err := schedule.SlotAt(s.registry.For(userID).Slots(), day, q.Time)
	if err != nil {
		return nil, err
	}

	resp := &dto.CellResponse{Day: string(day), Time: q.Time, Occupied: ok}
	if ok {
		resp.Slot = &slot
	}
	return resp, nil
}

// ClickCell 已占用的单元格选中其时间段，空单元格返回新建预填值
func (s *scheduleService) ClickCell(_ context.Context, userID string, q *dto.CellQuery) (*dto.CellClickResponse, error) {
	day, err := schedule.ParseDay(q.Day)
	if err != nil {
		return nil, err
	}

	store := s.registry.For(userID)
	slot, ok, err := schedule.SlotAt(store.Slots(), day, q.Time)
	if err != nil {
		return nil, err
	}
	if ok {
		store.SetSelected(slot.ID)
		return &dto.CellClickResponse{Action: "selected", Slot: &slot}, nil
	}

	draft, err := schedule.DraftFor(day, q.Time)
	if err != nil {
		return nil, err
	}
	return &dto.CellClickResponse{
		Action: "create",
		Draft: &dto.DraftResponse{
			Day:       string(draft.Day),
			StartTime: draft.StartTime,
			EndTime:   draft.EndTime,
			Color:     draft.Color,
		},
	}, nil
}

func (s *scheduleService) Grid(_ context.Context, userID string) *dto.GridResponse {
	return &dto.GridResponse{
		Grid:         schedule.BuildGrid(s.registry.For(userID).Slots()),
		UnitsPerHour: schedule.UnitsPerHour,
		Palette:      schedule.Palette,
	}
}

// ── 内部辅助方法 ──

// check 构造写锁内执行的校验；exceptID 为更新时的自身 ID
func (s *scheduleService) check(exceptID string) schedule.SlotCheck {
	return func(candidate schedule.TimeSlot, slots []schedule.TimeSlot) error {
		if err := validateSlot(candidate); err != nil {
			return err
		}
		if !s.cfg.AllowOverlap && len(schedule.Overlapping(slots, candidate, exceptID)) > 0 {
			return ErrSlotOverlap
		}
		return nil
	}
}

// validateSlot 星期、时间格式、起止顺序与标题
func validateSlot(slot schedule.TimeSlot) error {
	if !slot.Day.Valid() {
		return ErrInvalidDay
	}
	start, err := schedule.ParseClock(slot.StartTime)
	if err != nil {
		return err
	}
	end, err := schedule.ParseClock(slot.EndTime)
	if err != nil {
		return err
	}
	if start.Minutes() >= end.Minutes() {
		return ErrInvalidTimeRange
	}
	if strings.TrimSpace(slot.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// normalizeClock 校验并输出零填充的 "HH:mm"
func normalizeClock(v string) (string, error) {
	c, err := schedule.ParseClock(v)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func toPatch(req *dto.UpdateTimeSlotRequest) (schedule.SlotPatch, error) {
	var patch schedule.SlotPatch
	if req.Day != nil {
		day, err := schedule.ParseDay(*req.Day)
		if err != nil {
			return patch, err
		}
		patch.Day = &day
	}
	if req.StartTime != nil {
		v, err := normalizeClock(*req.StartTime)
		if err != nil {
			return patch, err
		}
		patch.StartTime = &v
	}
	if req.EndTime != nil {
		v, err := normalizeClock(*req.EndTime)
		if err != nil {
			return patch, err
		}
		patch.EndTime = &v
	}
	if req.Title != nil {
		v := strings.TrimSpace(*req.Title)
		patch.Title = &v
	}
	patch.Description = req.Description
	patch.Color = req.Color
	return patch, nil
}
