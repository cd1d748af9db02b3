package app

import (
	"context"

	"github.com/dep2p/go-stationbus/internal/app/station"
	"github.com/dep2p/go-stationbus/internal/core/acquisition"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/metrics"
	"github.com/dep2p/go-stationbus/internal/core/receiver"
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/rpc"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Runtime 表示一个已通过 fx 组装完成的 StationBus 运行时
//
// 未加载的模块对应字段为 nil（例如 consumer 角色没有 Acquisition）。
type Runtime struct {
	Registry    *channel.Registry
	Registrar   *registrar.Registrar
	Receiver    *receiver.Receiver
	Client      *rpc.Client
	Router      *router.Router
	Server      *rpc.Server
	Acquisition *acquisition.Service
	Controller  *station.Controller
	Signals     pkgif.SignalStore
	Metrics     *metrics.Collector

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
