package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/response"
)

// Limiter 按键限流
type Limiter interface {
	Allow(key string) bool
}

// RateLimitMiddleware 按客户端IP限流
func RateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			response.Fail(c, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		c.Next()
	}
}
