package schedule

import (
	"sync"

	"github.com/google/uuid"
)

// Store 单个用户会话内的课表状态容器
//
// 持有有序的时间段列表、当前选中项（以 ID 表示）与编辑标记。
// 所有操作均为全函数：未知 ID 静默忽略，不做时间或重叠校验，
// 校验职责在 Service 层。读取方法返回副本，调用方无法绕过锁修改内部状态。
type Store struct {
	mu         sync.RWMutex
	slots      []TimeSlot
	selectedID string
	editing    bool

	newID     func() string
	pickColor func() string
}

// Snapshot 某一时刻的只读快照
type Snapshot struct {
	Slots    []TimeSlot `json:"slots"`
	Selected *TimeSlot  `json:"selected"`
	Editing  bool       `json:"editing"`
}

// NewStore 创建空的 Store
func NewStore() *Store {
	return &Store{
		slots:     []TimeSlot{},
		newID:     func() string { return uuid.New().String() },
		pickColor: RandomColor,
	}
}

// SlotCheck 写入前对候选时间段的检查，slots 为当前全部时间段（只读）
// 在写锁内调用，不得回调 Store 的方法
type SlotCheck func(candidate TimeSlot, slots []TimeSlot) error

// Add 追加新时间段并返回（含生成的 ID）
func (s *Store) Add(in SlotInput) TimeSlot {
	slot, _ := s.AddChecked(in, nil)
	return slot
}

// AddChecked 在同一把写锁内执行 check 并追加；check 返回错误时不做修改
func (s *Store) AddChecked(in SlotInput, check SlotCheck) (TimeSlot, error) {
	color := in.Color
	if color == "" {
		color = s.pickColor()
	}
	slot := TimeSlot{
		ID:          s.newID(),
		Day:         in.Day,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Title:       in.Title,
		Description: in.Description,
		Color:       color,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if check != nil {
		if err := check(slot, s.slots); err != nil {
			return TimeSlot{}, err
		}
	}
	s.slots = append(s.slots, slot)
	return slot, nil
}

// Update 按 ID 局部更新；ID 不存在时不做任何修改并返回 false
func (s *Store) Update(id string, patch SlotPatch) (TimeSlot, bool) {
	slot, ok, _ := s.UpdateChecked(id, patch, nil)
	return slot, ok
}

// UpdateChecked 在同一把写锁内对"当前值 + patch"执行 check 再写回
// ID 不存在时返回 false；check 返回错误时不做修改
func (s *Store) UpdateChecked(id string, patch SlotPatch, check SlotCheck) (TimeSlot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return TimeSlot{}, false, nil
	}
	candidate := s.slots[i]
	patch.apply(&candidate)
	if check != nil {
		if err := check(candidate, s.slots); err != nil {
			return TimeSlot{}, true, err
		}
	}
	s.slots[i] = candidate
	return candidate, true, nil
}

// Delete 按 ID 删除；若删除的是当前选中项则同时清除选中
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	return true
}

// SetSelected 无条件替换当前选中项，空字符串表示取消选中
func (s *Store) SetSelected(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.mu.Unlock()
}

// Selected 通过 ID 查找当前选中的时间段
func (s *Store) Selected() (TimeSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocked()
}

// SelectedID 当前选中项 ID（可能已悬空，查找以 Selected 为准）
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// SetEditing 设置编辑标记
func (s *Store) SetEditing(editing bool) {
	s.mu.Lock()
	s.editing = editing
	s.mu.Unlock()
}

// Editing 当前是否处于编辑状态
func (s *Store) Editing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing
}

// Clear 清空全部时间段、选中项与编辑标记
func (s *Store) Clear() {
	s.mu.Lock()
	s.slots = []TimeSlot{}
	s.selectedID = ""
	s.editing = false
	s.mu.Unlock()
}

// Get 按 ID 查询
func (s *Store) Get(id string) (TimeSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return TimeSlot{}, false
	}
	return s.slots[i], true
}

// Slots 按插入顺序返回全部时间段的副本
func (s *Store) Slots() []TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TimeSlot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Len 时间段数量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// Snapshot 原子地读取列表、选中项与编辑标记
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Slots:   make([]TimeSlot, len(s.slots)),
		Editing: s.editing,
	}
	copy(snap.Slots, s.slots)
	if sel, ok := s.selectedLocked(); ok {
		snap.Selected = &sel
	}
	return snap
}

// ── 内部辅助方法（调用方需持有锁） ──

func (s *Store) indexOf(id string) int {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) selectedLocked() (TimeSlot, bool) {
	if s.selectedID == "" {
		return TimeSlot{}, false
	}
	i := s.indexOf(s.selectedID)
	if i < 0 {
		return TimeSlot{}, false
	}
	return s.slots[i], true
}
