package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              StatusCode 响应状态码
// ============================================================================

// StatusCode 命令响应状态码
type StatusCode int32

const (
	// StatusSuccess 成功
	StatusSuccess StatusCode = iota
	// StatusInvalidRequest 负载为空或格式错误
	StatusInvalidRequest
	// StatusSerializationError 负载编解码失败
	StatusSerializationError
	// StatusHandlerNotFound 路由未注册
	StatusHandlerNotFound
	// StatusTimeout 处理超时或被取消
	StatusTimeout
	// StatusInternalError 处理器内部异常
	StatusInternalError
)

// String 返回状态码名称
func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusInvalidRequest:
		return "InvalidRequest"
	case StatusSerializationError:
		return "SerializationError"
	case StatusHandlerNotFound:
		return "HandlerNotFound"
	case StatusTimeout:
		return "Timeout"
	case StatusInternalError:
		return "InternalError"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Err 返回状态码对应的哨兵错误（Success 返回 nil）
func (s StatusCode) Err() error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusInvalidRequest:
		return ErrInvalidRequest
	case StatusSerializationError:
		return ErrSerialization
	case StatusHandlerNotFound:
		return ErrHandlerNotFound
	case StatusTimeout:
		return ErrTimeout
	default:
		return ErrInternal
	}
}

// ============================================================================
//                              CommandRequest / CommandResponse
// ============================================================================

// CommandRequest 命令请求
type CommandRequest struct {
	// RequestID 请求唯一标识（用于关联响应）
	RequestID string

	// Route 路由，决定由哪个处理器处理
	Route string

	// Payload 已编码的负载（可为空）
	Payload []byte
}

// CommandResponse 命令响应
type CommandResponse struct {
	// RequestID 对应请求的 ID
	RequestID string

	// Status 状态码
	Status StatusCode

	// Payload 已编码的结果（可为空）
	Payload []byte

	// ErrorMessage 人类可读的错误信息
	ErrorMessage string

	// ProcessingTimeMs 处理耗时（毫秒）
	ProcessingTimeMs int64
}

// IsSuccess 检查响应是否成功
func (r *CommandResponse) IsSuccess() bool {
	return r != nil && r.Status == StatusSuccess
}

// Err 将失败响应转换为错误，成功返回 nil
func (r *CommandResponse) Err() error {
	if r == nil {
		return fmt.Errorf("%w: nil response", ErrInternal)
	}
	if r.Status == StatusSuccess {
		return nil
	}
	if r.ErrorMessage == "" {
		return r.Status.Err()
	}
	return fmt.Errorf("%w: %s", r.Status.Err(), r.ErrorMessage)
}

// NewErrorResponse 构造失败响应
func NewErrorResponse(requestID string, status StatusCode, message string) *CommandResponse {
	return &CommandResponse{
		RequestID:    requestID,
		Status:       status,
		ErrorMessage: message,
	}
}

// ElapsedMs 将耗时转换为毫秒
func ElapsedMs(d time.Duration) int64 {
	return d.Milliseconds()
}
