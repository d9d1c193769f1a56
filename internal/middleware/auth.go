package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/model"
	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// claimsKey 上下文中保存认证声明的键
const claimsKey = "familytree_claims"

// TokenValidator 令牌校验
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*service.Claims, error)
}

// AuthMiddleware 认证中间件
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// SuperAdminMiddleware 仅允许超级管理员，需在AuthMiddleware之后使用
func SuperAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Fail(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if claims.Role != model.RoleSuperAdmin {
			response.Fail(c, http.StatusForbidden, "super admin privileges required")
			return
		}
		c.Next()
	}
}

// GetClaims 从上下文获取认证声明
func GetClaims(c *gin.Context) *service.Claims {
	if v, exists := c.Get(claimsKey); exists {
		if claims, ok := v.(*service.Claims); ok {
			return claims
		}
	}
	return nil
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
