package metrics

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/receiver"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/rpc"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Metrics 模块提供的结果
//
// 同一个 Collector 以各组件的 Observer 接口导出，
// 对应模块通过 optional 依赖自动接入。
type Result struct {
	fx.Out

	Collector        *Collector
	ChannelObserver  channel.Observer
	ReceiverObserver receiver.Observer
	RouterObserver   router.Observer
	RPCObserver      rpc.Observer
}

// Module 返回 Metrics Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideCollector),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideCollector 创建收集器
func ProvideCollector(p Params) Result {
	c := NewCollector(ConfigFromUnified(p.UnifiedCfg))
	return Result{
		Collector:        c,
		ChannelObserver:  c,
		ReceiverObserver: c,
		RouterObserver:   c,
		RPCObserver:      c,
	}
}

func registerLifecycle(lc fx.Lifecycle, p Params, c *Collector) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if cfg.ListenAddr == "" {
		return
	}

	srv := NewServer(cfg.ListenAddr, c)
	lc.Append(fx.Hook{
		OnStart: srv.Start,
		OnStop:  srv.Stop,
	})
}
