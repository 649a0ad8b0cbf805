package schedule

import (
	"sync"
	"time"
)

// Registry 用户 ID → Store 的会话注册表
// 课表仅存在于进程内存中，空闲超时的 Store 由 Sweep 回收。
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	now     func() time.Time
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		now:     time.Now,
	}
}

// For 获取用户的 Store，不存在时创建，并刷新最近访问时间
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		e = &registryEntry{store: NewStore()}
		r.entries[userID] = e
	}
	e.lastSeen = r.now()
	return e.store
}

// Drop 丢弃用户的 Store（如登出时）
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.entries, userID)
	r.mu.Unlock()
}

// Len 当前会话数
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep 回收空闲超过 idle 的 Store，返回回收数量；idle<=0 时不回收
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
