package receiver

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Params Receiver 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Registry   *channel.Registry
	Clock      clock.Clock `optional:"true"`
	Observer   Observer    `optional:"true"`
}

// Result Receiver 模块输出
type Result struct {
	fx.Out

	Receiver       *Receiver
	StreamReceiver pkgif.StreamReceiver
}

// Module 返回 Receiver Fx 模块
//
// 生命周期:
//   - OnStart: 打开通道并启动轮询
//   - OnStop: 停止轮询并关闭订阅
func Module() fx.Option {
	return fx.Module("receiver",
		fx.Provide(ProvideReceiver),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideReceiver 提供接收器
func ProvideReceiver(p Params) Result {
	opts := []Option{WithObserver(p.Observer)}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	r := New(ConfigFromUnified(p.UnifiedCfg), p.Registry, opts...)
	return Result{Receiver: r, StreamReceiver: r}
}

func registerLifecycle(lc fx.Lifecycle, r *Receiver) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return r.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return r.Close()
		},
	})
}
