package app

import (
	"time"

	"go.uber.org/fx"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithModules 追加 fx 选项（测试替换组件或注入时钟）
func WithModules(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.extra = append(b.extra, opts...)
	}
}

// WithStartTimeout 设置启动超时
func WithStartTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if d > 0 {
			b.startTimeout = d
		}
	}
}

// WithStopTimeout 设置停止超时
func WithStopTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if d > 0 {
			b.stopTimeout = d
		}
	}
}
