// Package app 提供模块集合清单
//
// modulesets.go 集中维护"哪个角色加载哪些模块"，是 Bootstrap 组装的唯一模块来源。
package app

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/app/station"
	"github.com/dep2p/go-stationbus/internal/core/acquisition"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/metrics"
	"github.com/dep2p/go-stationbus/internal/core/receiver"
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/rpc"
	"github.com/dep2p/go-stationbus/internal/core/storage"
)

// ============================================================================
//                              固定模块集合
// ============================================================================

// FoundationModules 基础模块（通道注册表与序列化器），所有角色都加载
func FoundationModules() fx.Option {
	return fx.Options(
		channel.Module(),
		registrar.Module(),
	)
}

// ConsumerModules 消费侧模块：流接收器与命令客户端
func ConsumerModules() fx.Option {
	return fx.Options(
		receiver.Module(),
		rpc.ClientModule(),
	)
}

// ProducerModules 采集侧模块：命令路由、命令服务端、采集服务与站点控制
func ProducerModules() fx.Option {
	return fx.Options(
		router.Module(),
		rpc.ServerModule(),
		acquisition.Module(),
		station.Module(),
	)
}

// ============================================================================
//                              可选模块（按配置选择）
// ============================================================================

// StorageModule 信号配置存储，由 config.Storage.Enable 决定是否加载
func StorageModule() fx.Option {
	return storage.Module()
}

// MetricsModule Prometheus 指标，由 config.Metrics.Enable 决定是否加载
func MetricsModule() fx.Option {
	return metrics.Module()
}

// ============================================================================
//                              组合
// ============================================================================

// ModulesFor 按配置组装模块
func ModulesFor(cfg *config.Config) fx.Option {
	modules := []fx.Option{FoundationModules()}

	if cfg.Metrics.Enable {
		modules = append(modules, MetricsModule())
	}
	if cfg.IsProducer() {
		if cfg.Storage.Enable {
			modules = append(modules, StorageModule())
		}
		modules = append(modules, ProducerModules())
	}
	if cfg.IsConsumer() {
		modules = append(modules, ConsumerModules())
	}
	return fx.Options(modules...)
}
