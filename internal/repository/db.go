package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"familytree_go/internal/model"
)

// DBConfig 数据库配置
type DBConfig struct {
	Type         string          // 数据库类型：mysql, postgres, sqlite
	Host         string          // 主机地址
	Port         int             // 端口
	Username     string          // 用户名
	Password     string          // 密码
	Database     string          // 数据库名，sqlite时为文件路径
	MaxIdleConns int             // 最大空闲连接数
	MaxOpenConns int             // 最大打开连接数
	MaxLifetime  time.Duration   // 连接最大生命周期
	LogLevel     logger.LogLevel // 日志级别
}

// DB 数据库连接实例
type DB struct {
	*gorm.DB
}

// DSN 根据数据库类型生成连接串
func (c *DBConfig) DSN() (string, error) {
	switch c.Type {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username, c.Password, c.Host, c.Port, c.Database), nil
	case "postgres", "":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.Username, c.Password, c.Database), nil
	case "sqlite":
		return c.Database, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", c.Type)
	}
}

func (c *DBConfig) dialector() (gorm.Dialector, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}
	switch c.Type {
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return postgres.Open(dsn), nil
	}
}

// InitDB 初始化数据库连接
func InitDB(config *DBConfig) (*DB, error) {
	dialector, err := config.dialector()
	if err != nil {
		return nil, err
	}

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second, // 慢SQL阈值
			LogLevel:                  config.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// 连接数据库，唯一约束冲突统一转换为 gorm.ErrDuplicatedKey
	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 配置连接池
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.MaxLifetime)
	}

	db := &DB{gormDB}
	if err := db.AutoMigrate(); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 自动迁移数据库表
func (db *DB) AutoMigrate() error {
	if err := db.DB.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Transaction 执行事务，回调返回错误时整体回滚
func (db *DB) Transaction(fc func(tx *gorm.DB) error) error {
	return db.DB.Transaction(fc)
}

// Paginate 分页作用域
func Paginate(page, perPage int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
