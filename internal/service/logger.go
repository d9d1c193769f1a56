package service

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel 日志级别
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug" // 调试
	LogLevelInfo  LogLevel = "info"  // 信息
	LogLevelWarn  LogLevel = "warn"  // 警告
	LogLevelError LogLevel = "error" // 错误
	LogLevelFatal LogLevel = "fatal" // 致命
)

// LogFormat 日志格式
type LogFormat string

const (
	LogFormatText LogFormat = "text" // 文本格式
	LogFormatJSON LogFormat = "json" // JSON格式
)

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      LogLevel  // 日志级别
	Format     LogFormat // 日志格式
	Output     io.Writer // 输出目标，默认标准输出
	FilePath   string    // 文件路径，设置后追加写入文件
	TimeFormat string    // 时间格式
}

// Logger 日志器，基于zerolog
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger 创建日志器实例
func NewLogger(config *LoggerConfig) (*Logger, error) {
	l := &Logger{}

	var out io.Writer = os.Stdout
	if config.Output != nil {
		out = config.Output
	}
	if config.FilePath != "" {
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		out = zerolog.SyncWriter(file)
	}

	if config.Format == LogFormatText {
		timeFormat := config.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat, NoColor: l.file != nil}
	}

	l.zl = zerolog.New(out).Level(parseLevel(config.Level)).With().Timestamp().Logger()
	return l, nil
}

// NewNopLogger 创建丢弃所有输出的日志器
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(level LogLevel) zerolog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Zerolog 返回底层zerolog日志器
func (l *Logger) Zerolog() *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return &l.zl
}

// Debug 记录调试日志
func (l *Logger) Debug(message string, args ...interface{}) {
	l.Zerolog().Debug().Msgf(message, args...)
}

// Info 记录信息日志
func (l *Logger) Info(message string, args ...interface{}) {
	l.Zerolog().Info().Msgf(message, args...)
}

// Warn 记录警告日志
func (l *Logger) Warn(message string, args ...interface{}) {
	l.Zerolog().Warn().Msgf(message, args...)
}

// Error 记录错误日志
func (l *Logger) Error(message string, args ...interface{}) {
	l.Zerolog().Error().Msgf(message, args...)
}

// Fatal 记录致命日志并退出
func (l *Logger) Fatal(message string, args ...interface{}) {
	l.Zerolog().Fatal().Msgf(message, args...)
}

// WithFields 创建带字段的日志器
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.Zerolog().With().Fields(fields).Logger()}
}

// Stop 关闭日志文件
func (l *Logger) Stop() {
	if l != nil && l.file != nil {
		l.file.Close()
	}
}
