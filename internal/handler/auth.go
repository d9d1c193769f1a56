package handler

import (
	"github.com/gin-gonic/gin"

	"familytree_go/internal/middleware"
	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// AuthHandler 登录与账户接口
type AuthHandler struct {
	auth *service.Auth
}

// NewAuthHandler 创建认证接口
func NewAuthHandler(auth *service.Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "login successful", result)
}

// Logout 注销当前会话
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "logout successful", nil)
}

// Dashboard 当前版主信息
func (h *AuthHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, service.NewError(service.ErrAuthentication, "authentication required", service.ErrNoClaims))
		return
	}

	moderator, err := h.auth.GetModerator(c.Request.Context(), claims.ModeratorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", moderator)
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var in service.ChangePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), middleware.GetClaims(c), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "password changed successfully", nil)
}

// CreateUser 超级管理员创建版主
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var in service.CreateModeratorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	moderator, err := h.auth.CreateModerator(c.Request.Context(), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "user created successfully", moderator)
}
