package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Rate            float64       // 速率（每秒）
	Burst           int           // 突发容量
	IdleTTL         time.Duration // 空闲多久后移除该键
	CleanupInterval time.Duration // 清理间隔
}

// RateLimitStats 限流统计
type RateLimitStats struct {
	AllowedRequests  int64     // 允许的请求数
	RejectedRequests int64     // 拒绝的请求数
	LastRequestTime  time.Time // 最后请求时间
}

type keyLimiter struct {
	limiter *rate.Limiter
	stats   RateLimitStats
}

// RateLimiter 按键（如客户端IP）的令牌桶限流器
type RateLimiter struct {
	config  *RateLimitConfig
	logger  *Logger
	entries map[string]*keyLimiter
	mu      sync.Mutex
	stopCh  chan struct{}
	now     func() time.Time
}

// NewRateLimiter 创建限流器实例
func NewRateLimiter(config *RateLimitConfig, logger *Logger) *RateLimiter {
	limiter := &RateLimiter{
		config:  config,
		logger:  logger,
		entries: make(map[string]*keyLimiter),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	// 启动清理
	if config.CleanupInterval > 0 {
		go limiter.cleanup()
	}

	return limiter
}

// Allow 检查是否允许请求
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, exists := l.entries[key]
	if !exists {
		entry = &keyLimiter{limiter: rate.NewLimiter(rate.Limit(l.config.Rate), l.config.Burst)}
		l.entries[key] = entry
	}
	entry.stats.LastRequestTime = now

	if entry.limiter.AllowN(now, 1) {
		entry.stats.AllowedRequests++
		return true
	}
	entry.stats.RejectedRequests++
	l.logger.Warn("rate limit exceeded for %s", key)
	return false
}

// cleanup 清理空闲的键
func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *RateLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.entries {
		if now.Sub(entry.stats.LastRequestTime) > l.config.IdleTTL {
			delete(l.entries, key)
		}
	}
}

// GetStats 获取限流统计信息
func (l *RateLimiter) GetStats(key string) *RateLimitStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, exists := l.entries[key]; exists {
		stats := entry.stats
		return &stats
	}
	return nil
}

// Reset 重置某个键
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Stop 停止限流器
func (l *RateLimiter) Stop() {
	close(l.stopCh)
}
