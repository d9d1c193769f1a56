package repository

import (
	"gorm.io/gorm/logger"
)

// NewMemoryDB 创建内存SQLite数据库，供本地运行与测试使用
func NewMemoryDB() (*DB, error) {
	return InitDB(&DBConfig{
		Type:         "sqlite",
		Database:     "file::memory:",
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
}
