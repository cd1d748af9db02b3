package acquisition

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Params Acquisition 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Registry   *channel.Registry
	Instrument pkgif.Instrument  `optional:"true"`
	Store      pkgif.SignalStore `optional:"true"`
	Clock      clock.Clock       `optional:"true"`
}

// Result Acquisition 模块输出
type Result struct {
	fx.Out

	Service     *Service
	Acquisition pkgif.Acquisition
}

// Module 返回 Acquisition Fx 模块
//
// 生命周期:
//   - OnStart: 打开通道、启动发布器与心跳；AutoStart 时开始采样
//   - OnStop: 停止采样、发布剩余采样并停止心跳
func Module() fx.Option {
	return fx.Module("acquisition",
		fx.Provide(ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideService 加载信号配置并创建采集服务
func ProvideService(p Params) (Result, error) {
	unified := p.UnifiedCfg
	if unified == nil {
		unified = config.NewConfig()
	}

	signals, err := LoadSignals(p.Store, unified.Acquisition.Signals, unified.Storage.SeedFromConfig)
	if err != nil {
		return Result{}, err
	}

	var opts []Option
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	svc, err := NewService(ConfigFromUnified(unified), p.Registry, p.Instrument, signals, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Service: svc, Acquisition: svc}, nil
}

func registerLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.Open(ctx); err != nil {
				return err
			}
			if s.cfg.AutoStart {
				return s.Start(ctx)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return s.Close()
		},
	})
}
