package service

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm/logger"

	"familytree_go/internal/repository"
)

// Config 应用配置。来源优先级：YAML文件 > 环境变量 > .env > 默认值
type Config struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`

	Database DatabaseConfig `yaml:"database"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheSize     int           `yaml:"cache_size"`

	UploadDir string `yaml:"upload_dir"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	LoginRate  float64 `yaml:"login_rate"`
	LoginBurst int     `yaml:"login_burst"`

	CORSOrigins []string `yaml:"cors_origins"`

	SuperAdminEmail    string `yaml:"super_admin_email"`
	SuperAdminPassword string `yaml:"super_admin_password"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type         string `yaml:"type"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	LogLevel     string `yaml:"log_level"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Port:    "8080",
		GinMode: "release",
		Database: DatabaseConfig{
			Type:         "postgres",
			Host:         "localhost",
			Port:         5432,
			Name:         "familytree",
			MaxIdleConns: 10,
			MaxOpenConns: 50,
			LogLevel:     "warn",
		},
		TokenTTL:    24 * time.Hour,
		CacheTTL:    10 * time.Minute,
		CacheSize:   1024,
		UploadDir:   "uploads",
		LogLevel:    "info",
		LogFormat:   "json",
		LoginRate:   0.2,
		LoginBurst:  5,
		CORSOrigins: []string{"*"},
	}
}

// LoadConfig 加载配置
func LoadConfig(envFiles ...string) (*Config, error) {
	// .env不存在时忽略
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := DefaultConfig()
	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 从YAML文件覆盖配置
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate 校验必需配置
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config JWT_SECRET is required")
	}
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config TOKEN_TTL must be positive")
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// loadEnv 从环境变量读取配置
func (c *Config) loadEnv(lookup lookupFunc) error {
	var errs []string
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be an integer", key))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a number", key))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a duration", key))
				return
			}
			*dst = d
		}
	}

	str("PORT", &c.Port)
	str("GIN_MODE", &c.GinMode)
	str("DB_TYPE", &c.Database.Type)
	str("DB_HOST", &c.Database.Host)
	integer("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	integer("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	integer("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	str("DB_LOG_LEVEL", &c.Database.LogLevel)
	str("JWT_SECRET", &c.JWTSecret)
	duration("TOKEN_TTL", &c.TokenTTL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	integer("REDIS_DB", &c.RedisDB)
	duration("CACHE_TTL", &c.CacheTTL)
	integer("CACHE_SIZE", &c.CacheSize)
	str("UPLOAD_DIR", &c.UploadDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("LOG_FILE", &c.LogFile)
	float("LOGIN_RATE", &c.LoginRate)
	integer("LOGIN_BURST", &c.LoginBurst)
	str("SUPER_ADMIN_EMAIL", &c.SuperAdminEmail)
	str("SUPER_ADMIN_PASSWORD", &c.SuperAdminPassword)
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DBConfig 转换为数据库连接配置
func (c *Config) DBConfig() *repository.DBConfig {
	return &repository.DBConfig{
		Type:         c.Database.Type,
		Host:         c.Database.Host,
		Port:         c.Database.Port,
		Username:     c.Database.User,
		Password:     c.Database.Password,
		Database:     c.Database.Name,
		MaxIdleConns: c.Database.MaxIdleConns,
		MaxOpenConns: c.Database.MaxOpenConns,
		MaxLifetime:  time.Hour,
		LogLevel:     gormLogLevel(c.Database.LogLevel),
	}
}

// AuthConfig 转换为认证配置
func (c *Config) AuthConfig() *AuthConfig {
	return &AuthConfig{
		SecretKey:     c.JWTSecret,
		TokenDuration: c.TokenTTL,
	}
}

// LoggerConfig 转换为日志配置
func (c *Config) LoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:    LogLevel(strings.ToLower(c.LogLevel)),
		Format:   LogFormat(strings.ToLower(c.LogFormat)),
		FilePath: c.LogFile,
	}
}

// RateLimitConfig 转换为登录限流配置
func (c *Config) RateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Rate:            c.LoginRate,
		Burst:           c.LoginBurst,
		IdleTTL:         10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
