package channel

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
)

// Params Channel 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Observer   Observer       `optional:"true"`
}

// Module 返回 Channel Fx 模块
//
// 提供:
//   - *Registry: 进程内通道注册表
//
// 生命周期:
//   - OnStop: 关闭全部通道
func Module() fx.Option {
	return fx.Module("channel",
		fx.Provide(ProvideRegistry),
		fx.Invoke(registerLifecycle),
	)
}

// ConfigFromUnified 从统一配置创建通道配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		Dir:         cfg.Channels.Dir,
		OpenTimeout: cfg.Channels.OpenTimeout.Duration(),
	}
}

// ProvideRegistry 提供通道注册表
func ProvideRegistry(p Params) *Registry {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	cfg.Observer = p.Observer
	return NewRegistry(cfg)
}

func registerLifecycle(lc fx.Lifecycle, r *Registry) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return r.Close()
		},
	})
}
