package service

import (
	"context"
	"sync"
	"time"
)

// JobFunc 周期任务
type JobFunc func(ctx context.Context) error

// JobStats 任务统计
type JobStats struct {
	Runs      int64     // 运行次数
	Failures  int64     // 失败次数
	LastRun   time.Time // 最后运行时间
	LastError string    // 最后错误
}

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
	stats    JobStats
}

// Scheduler 周期任务调度器，如清理过期会话
type Scheduler struct {
	logger  *Logger
	timeout time.Duration
	jobs    []*job
	mu      sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewScheduler 创建调度器实例，timeout为单次任务超时
func NewScheduler(logger *Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{logger: logger, timeout: timeout}
}

// Every 注册周期任务，需在Start之前调用
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{name: name, interval: interval, fn: fn})
}

// Start 启动全部任务，ctx取消或Stop后退出
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, j)
		}
	}
}

// RunNow 立即同步执行指定任务
func (s *Scheduler) RunNow(ctx context.Context, name string) bool {
	for _, j := range s.jobs {
		if j.name == name {
			s.run(ctx, j)
			return true
		}
	}
	return false
}

func (s *Scheduler) run(ctx context.Context, j *job) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	err := j.fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	j.stats.Runs++
	j.stats.LastRun = time.Now()
	j.stats.LastError = ""
	if err != nil {
		j.stats.Failures++
		j.stats.LastError = err.Error()
		s.logger.Warn("scheduled job %s failed: %v", j.name, err)
	}
}

// GetStats 获取任务统计
func (s *Scheduler) GetStats(name string) *JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.name == name {
			stats := j.stats
			return &stats
		}
	}
	return nil
}

// Stop 停止调度器并等待运行中的任务结束
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
