package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryStrategy 重试策略
type RetryStrategy string

const (
	RetryStrategyFixed       RetryStrategy = "fixed"       // 固定间隔
	RetryStrategyExponential RetryStrategy = "exponential" // 指数退避
	RetryStrategyLinear      RetryStrategy = "linear"      // 线性退避
)

// RetryConfig 重试配置，仅用于启动阶段连接数据库与缓存
type RetryConfig struct {
	MaxAttempts     int           // 最大尝试次数
	InitialInterval time.Duration // 初始间隔
	MaxInterval     time.Duration // 最大间隔
	Multiplier      float64       // 指数退避乘数
	Jitter          float64       // 抖动比例，0表示不抖动
	Strategy        RetryStrategy // 重试策略
}

// DefaultRetryConfig 默认重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
		Jitter:          0.2,
		Strategy:        RetryStrategyExponential,
	}
}

// Retry 重试器
type Retry struct {
	config *RetryConfig
	logger *Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetry 创建重试器实例
func NewRetry(config *RetryConfig, logger *Logger) *Retry {
	return &Retry{config: config, logger: logger, sleep: sleepContext}
}

// Do 执行fn直到成功、达到最大次数或ctx取消
func (r *Retry) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	attempts := r.config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		interval := r.interval(attempt)
		r.logger.Warn("%s failed (attempt %d/%d), retrying in %v: %v", name, attempt, attempts, interval, lastErr)
		if err := r.sleep(ctx, interval); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}

// interval 计算第attempt次失败后的等待间隔
func (r *Retry) interval(attempt int) time.Duration {
	var d float64
	switch r.config.Strategy {
	case RetryStrategyFixed:
		d = float64(r.config.InitialInterval)
	case RetryStrategyLinear:
		d = float64(r.config.InitialInterval) * float64(attempt)
	default:
		d = float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt-1))
	}
	if r.config.MaxInterval > 0 {
		d = math.Min(d, float64(r.config.MaxInterval))
	}
	if r.config.Jitter > 0 {
		d += d * r.config.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
