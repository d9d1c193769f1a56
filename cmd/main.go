package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"familytree_go/internal/handler"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

func main() {
	// 加载配置
	cfg, err := service.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := service.NewLogger(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 启动阶段数据库与Redis可能尚未就绪
	retry := service.NewRetry(service.DefaultRetryConfig(), logger)

	// 初始化数据库连接
	var db *repository.DB
	err = retry.Do(ctx, "connect database", func(context.Context) error {
		var err error
		db, err = repository.InitDB(cfg.DBConfig())
		return err
	})
	if err != nil {
		logger.Fatal("failed to initialize database: %v", err)
	}
	defer db.Close()

	// 初始化缓存服务，未配置Redis时使用进程内缓存
	var cache service.Cache
	if cfg.RedisAddr != "" {
		redisCache := service.NewCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		err := retry.Do(ctx, "connect redis", func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return redisCache.Ping(pingCtx)
		})
		if err != nil {
			logger.Fatal("failed to connect to redis: %v", err)
		}
		cache = redisCache
	} else {
		cache = service.NewLocalCache(cfg.CacheSize, cfg.CacheTTL)
	}
	defer cache.Close()

	// 初始化文件上传服务
	uploads, err := service.NewUploadService(cfg.UploadDir)
	if err != nil {
		logger.Fatal("failed to initialize upload service: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetricsService(registry)

	validator := service.NewValidator()
	family := service.NewFamilyService(db, validator, logger).
		WithCache(cache, cfg.CacheTTL).
		WithUploads(uploads).
		WithMetrics(metrics)
	auth := service.NewAuth(cfg.AuthConfig(), db, validator, logger)
	gallery := service.NewGalleryService(db, uploads, validator, logger)
	logo := service.NewLogoService(db, uploads, validator, logger)
	loginLimit := service.NewRateLimiter(cfg.RateLimitConfig(), logger)
	defer loginLimit.Stop()

	if err := auth.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		logger.Fatal("failed to ensure super admin: %v", err)
	}

	// 定期清理过期会话
	scheduler := service.NewScheduler(logger, time.Minute)
	scheduler.Every("purge_sessions", time.Hour, func(ctx context.Context) error {
		n, err := auth.PurgeExpiredSessions(ctx)
		if err == nil && n > 0 {
			logger.Info("purged %d expired sessions", n)
		}
		return err
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// 设置gin模式
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(&handler.Services{
		Family:      family,
		Auth:        auth,
		Gallery:     gallery,
		Logo:        logo,
		Uploads:     uploads,
		LoginLimit:  loginLimit,
		Metrics:     metrics,
		Gatherer:    registry,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed: %v", err)
		}
	}()

	// 启动服务器
	logger.Info("server is running on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to start server: %v", err)
	}
}
