package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/service"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Body 统一响应结构
type Body struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK 成功响应
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Status: StatusSuccess, Message: message, Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Status: StatusSuccess, Message: message, Data: data})
}

// Fail 失败响应并终止后续处理
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Body{Status: StatusFailed, Message: message})
}

// Error 将业务错误映射为HTTP状态码，内部错误不暴露细节
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	status := StatusCode(appErr.Code)
	message := appErr.Message
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	Fail(c, status, message)
}

// StatusCode 错误码到HTTP状态码
func StatusCode(code service.ErrorCode) int {
	switch code {
	case service.ErrValidation:
		return http.StatusBadRequest
	case service.ErrAuthentication:
		return http.StatusUnauthorized
	case service.ErrAuthorization:
		return http.StatusForbidden
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrConflict:
		return http.StatusConflict
	case service.ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
