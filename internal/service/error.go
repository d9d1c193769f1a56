package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统级错误码
	ErrInternal ErrorCode = iota + 1
	ErrDatabase
	ErrValidation
	ErrAuthentication
	ErrAuthorization
	ErrNotFound
	ErrConflict
	ErrRateLimited
)

// String 返回错误码名称
func (c ErrorCode) String() string {
	switch c {
	case ErrDatabase:
		return "database"
	case ErrValidation:
		return "validation"
	case ErrAuthentication:
		return "authentication"
	case ErrAuthorization:
		return "authorization"
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// AppError 应用程序错误
type AppError struct {
	Code    ErrorCode              // 错误码
	Message string                 // 错误消息，可返回给调用方
	Err     error                  // 原始错误
	Context map[string]interface{} // 上下文信息
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现errors.Unwrap接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新的应用程序错误
func NewError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Is 检查错误码是否匹配
func (e *AppError) Is(code ErrorCode) bool {
	return e.Code == code
}

// CodeOf 提取错误码，非AppError视为内部错误
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

func validationError(format string, args ...interface{}) *AppError {
	return NewError(ErrValidation, fmt.Sprintf(format, args...), nil)
}

func conflictError(message string) *AppError {
	return NewError(ErrConflict, message, nil)
}

func notFoundError(what, id string) *AppError {
	return NewError(ErrNotFound, what+" not found", nil).WithContext("id", id)
}

// dbError 包装持久化错误，已是AppError的原样返回
func dbError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return NewError(ErrDatabase, op+" failed", err)
}

// uniqueConflict 唯一约束冲突转换为Conflict，其余错误按持久化错误处理
func uniqueConflict(err error, op, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewError(ErrConflict, message, err)
	}
	return dbError(op, err)
}
