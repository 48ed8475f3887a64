// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移全部数据表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Note{}, &NoteTag{})
}
