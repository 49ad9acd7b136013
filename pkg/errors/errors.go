// Package errors 提供统一的错误定义
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess       ErrorCode = "0"
	CodeUnknown       ErrorCode = "1000"
	CodeInvalidConfig ErrorCode = "1001"
	CodeInterrupted   ErrorCode = "1002"

	// 生成错误 (2xxx)
	CodeGenerationFailed ErrorCode = "2001"
	CodeLLMCallFailed    ErrorCode = "2002"
	CodeSummarizeFailed  ErrorCode = "2003"
	CodeMemoryMergeFailed ErrorCode = "2004"
	CodeBookUnderLength  ErrorCode = "2005"

	// 外部服务错误 (3xxx)
	CodeServiceUnreachable ErrorCode = "3001"

	// 存储错误 (4xxx)
	CodeStateStoreFailed ErrorCode = "4001"
	CodeCatalogInvalid   ErrorCode = "4002"
)

// 进程退出码
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Err     error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 创建带格式化消息的应用错误
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 检查错误链中是否存在指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ExitStatus 错误码转进程退出码。
// 用户中断（包括被信号取消的 context）与生成失败必须区分。
func ExitStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) || IsCode(err, CodeInterrupted) {
		return ExitInterrupted
	}
	return ExitFailure
}
