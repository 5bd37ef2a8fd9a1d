// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess       ErrorCode = "0"
	CodeUnknown       ErrorCode = "1000"
	CodeInvalidParam  ErrorCode = "1001"
	CodeNotFound      ErrorCode = "1002"
	CodeConflict      ErrorCode = "1003"
	CodeInternalError ErrorCode = "1004"

	// 配置错误 (2xxx)：启动阶段致命
	CodeConfigInvalid     ErrorCode = "2001"
	CodeCredentialMissing ErrorCode = "2002"

	// 生成提供商错误 (3xxx)：记录为失败结果，批次继续
	CodeProviderError    ErrorCode = "3001"
	CodeProviderTimeout  ErrorCode = "3002"
	CodeProviderBadShape ErrorCode = "3003"
	CodeJobNotCompleted  ErrorCode = "3004"

	// 校验错误 (4xxx)：候选丢弃，批次继续
	CodeValidationFailed ErrorCode = "4001"

	// 持久化错误 (5xxx)：记录日志，非致命
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
	CodeStorageError  ErrorCode = "5003"
	CodeFileError     ErrorCode = "5004"
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

// WithDetail 返回携带详细信息的副本；预定义错误本体不可变
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 返回携带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// Fatal 判断错误是否应终止进程（仅配置类错误致命，见错误分级约定）
func (e *AppError) Fatal() bool {
	switch e.Code {
	case CodeConfigInvalid, CodeCredentialMissing:
		return true
	default:
		return false
	}
}

// ExitCode 错误码对应的进程退出码
func (e *AppError) ExitCode() int {
	if e.Fatal() {
		return 1
	}
	return 0
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 预定义错误：启动凭据检查与队列轮询超时复用
var (
	ErrCredentialMissing = New(CodeCredentialMissing, "provider credential missing")
	ErrProviderTimeout   = New(CodeProviderTimeout, "generation provider timeout")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
