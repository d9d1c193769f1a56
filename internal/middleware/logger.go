package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// RequestLogger 请求日志与耗时指标，metrics可为nil
func RequestLogger(logger *service.Logger, metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if metrics != nil {
			metrics.RequestDuration.
				WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
				Observe(elapsed.Seconds())
		}

		zl := logger.Zerolog()
		event := zl.Info()
		if status >= http.StatusInternalServerError {
			event = zl.Error()
		} else if status >= http.StatusBadRequest {
			event = zl.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery 捕获panic并返回统一错误响应
func Recovery(logger *service.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		logger.Zerolog().Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("panic recovered")
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	})
}
