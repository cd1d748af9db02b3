package log

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ThrottledLogger 限速 logger
//
// 用于热循环中的错误日志：超出速率的日志被丢弃并计数，
// 下一条放行的日志会携带 suppressed 属性。
type ThrottledLogger struct {
	inner      *LazyLogger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

// Throttled 创建限速 logger，每 every 放行一条，允许 burst 条突发
func Throttled(inner *LazyLogger, every time.Duration, burst int) *ThrottledLogger {
	if burst < 1 {
		burst = 1
	}
	return &ThrottledLogger{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

// Warn 限速输出 Warn 日志
func (t *ThrottledLogger) Warn(msg string, args ...any) {
	if args, ok := t.admit(args); ok {
		t.inner.Warn(msg, args...)
	}
}

// Error 限速输出 Error 日志
func (t *ThrottledLogger) Error(msg string, args ...any) {
	if args, ok := t.admit(args); ok {
		t.inner.Error(msg, args...)
	}
}

// Suppressed 返回当前累计被丢弃的日志条数
func (t *ThrottledLogger) Suppressed() int64 {
	return t.suppressed.Load()
}

func (t *ThrottledLogger) admit(args []any) ([]any, bool) {
	if !t.limiter.Allow() {
		t.suppressed.Add(1)
		return nil, false
	}
	if n := t.suppressed.Swap(0); n > 0 {
		args = append(args, "suppressed", n)
	}
	return args, true
}
