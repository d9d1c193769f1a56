package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache 缓存接口，值以JSON存储
type Cache interface {
	// Get 读取缓存，未命中时返回false
	Get(ctx context.Context, key string, value interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr 原子自增计数器
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// CacheService Redis缓存服务
type CacheService struct {
	client *redis.Client
}

// NewCacheService 创建缓存服务实例
func NewCacheService(addr, password string, db int) *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &CacheService{
		client: client,
	}
}

// Ping 检查Redis连接
func (s *CacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Set 设置缓存
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.client.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存
func (s *CacheService) Get(ctx context.Context, key string, value interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get value: %w", err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

// Delete 删除缓存
func (s *CacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Incr 自增计数器
func (s *CacheService) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

// Close 关闭连接
func (s *CacheService) Close() error {
	return s.client.Close()
}

// LocalCache 进程内缓存，未配置Redis时使用。计数器不进入LRU，不会过期或被淘汰
type LocalCache struct {
	items    *expirable.LRU[string, []byte]
	mu       sync.Mutex
	counters map[string]int64
}

// NewLocalCache 创建进程内缓存，size为最大条目数，ttl为默认过期时间
func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	return &LocalCache{
		items:    expirable.NewLRU[string, []byte](size, nil, ttl),
		counters: make(map[string]int64),
	}
}

// Get 获取缓存
func (c *LocalCache) Get(_ context.Context, key string, value interface{}) (bool, error) {
	c.mu.Lock()
	n, counter := c.counters[key]
	c.mu.Unlock()

	var data []byte
	if counter {
		data = []byte(strconv.FormatInt(n, 10))
	} else {
		var ok bool
		if data, ok = c.items.Get(key); !ok {
			return false, nil
		}
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

// Set 设置缓存。LRU使用统一过期时间，expiration参数被忽略
func (c *LocalCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	c.items.Add(key, data)
	return nil
}

// Delete 删除缓存
func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.counters, key)
	c.mu.Unlock()
	c.items.Remove(key)
	return nil
}

// Incr 自增计数器
func (c *LocalCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counters[key]++
	return c.counters[key], nil
}

// Close 清空缓存
func (c *LocalCache) Close() error {
	c.mu.Lock()
	c.counters = make(map[string]int64)
	c.mu.Unlock()
	c.items.Purge()
	return nil
}
