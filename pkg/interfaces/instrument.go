// Package interfaces 定义 StationBus 公共接口
//
// 本文件定义采集侧接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-stationbus/pkg/types"
)

// Instrument 测量仪器
//
// Read 返回信号的一次读数。返回错误时采样循环不会终止，
// 而是写入 Quality=Bad、Value=NaN 的采样。
type Instrument interface {
	Read(ctx context.Context, signal types.SignalConfig) (float64, error)
}

// Acquisition 采集服务
type Acquisition interface {
	// Start 启动全部采样器、发布器与心跳
	Start(ctx context.Context) error

	// Stop 停止全部采样器
	Stop(ctx context.Context) error

	// Pause 暂停采样（心跳继续，状态为 Idle）
	Pause()

	// Resume 恢复采样
	Resume()

	// Acquiring 是否正在采样
	Acquiring() bool

	// Signals 返回采集的信号配置
	Signals() []types.SignalConfig
}
