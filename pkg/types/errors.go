// Package types 定义 StationBus 公共数据类型
package types

import (
	"context"
	"errors"
)

// ============================================================================
//                              错误分类
// ============================================================================

// 跨组件共享的错误分类
//
// 各组件的具体错误通过 fmt.Errorf("%w") 包装这些哨兵错误，
// 调用方使用 errors.Is 判断类别。
var (
	// ErrChannelUnavailable 共享内存段或跨进程锁无法创建/打开（构造期致命错误）
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrChannelClosed 在已关闭的通道上执行操作
	ErrChannelClosed = errors.New("channel closed")

	// ErrTimeout 有界等待超时（软错误，可重试）
	ErrTimeout = errors.New("timeout")

	// ErrSerialization 负载编解码失败
	ErrSerialization = errors.New("serialization error")

	// ErrHandlerNotFound 路由未注册
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrInvalidRequest 请求为空或格式错误
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternal 处理器内部异常
	ErrInternal = errors.New("internal error")
)

// StatusFromError 将错误链映射为响应状态码
//
// nil 映射为 StatusSuccess；无法识别的错误映射为 StatusInternalError。
func StatusFromError(err error) StatusCode {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrInvalidRequest):
		return StatusInvalidRequest
	case errors.Is(err, ErrSerialization):
		return StatusSerializationError
	case errors.Is(err, ErrHandlerNotFound):
		return StatusHandlerNotFound
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return StatusTimeout
	default:
		return StatusInternalError
	}
}
