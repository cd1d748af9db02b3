// Package interfaces 定义 StationBus 公共接口
//
// 本文件定义 StreamReceiver 接口：把拉取式的通道桥接为推送式的多订阅者流。
package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-stationbus/pkg/types"
)

// ReceiverState 接收器状态
type ReceiverState int32

const (
	// ReceiverStopped 已停止
	ReceiverStopped ReceiverState = iota
	// ReceiverStarting 正在启动
	ReceiverStarting
	// ReceiverRunning 运行中
	ReceiverRunning
	// ReceiverStopping 正在停止
	ReceiverStopping
)

// String 返回状态名
func (s ReceiverState) String() string {
	switch s {
	case ReceiverStopped:
		return "stopped"
	case ReceiverStarting:
		return "starting"
	case ReceiverRunning:
		return "running"
	case ReceiverStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Connectivity 生产者连通状态（由心跳推导）
type Connectivity int32

const (
	// Disconnected 超时未收到心跳
	Disconnected Connectivity = iota
	// Connected 心跳正常
	Connected
)

// String 返回连通状态名
func (c Connectivity) String() string {
	if c == Connected {
		return "connected"
	}
	return "disconnected"
}

// ConnectivityEvent 连通状态变化事件
type ConnectivityEvent struct {
	// Previous 变化前状态
	Previous Connectivity

	// Current 变化后状态
	Current Connectivity

	// LastHeartbeat 最近一次心跳（零值表示从未收到）
	LastHeartbeat types.HeartbeatItem

	// Timestamp 事件时间
	Timestamp time.Time
}

// ReceiverStats 接收器统计
type ReceiverStats struct {
	State        ReceiverState
	Connectivity Connectivity

	// Received 从通道取出的条目数
	Received int64

	// Lost 由序列号空洞推算出的丢失条目数
	Lost int64

	// PollErrors 轮询失败次数
	PollErrors int64

	// Heartbeats 收到的心跳数
	Heartbeats int64

	// TrackedIDs 末值缓存中的信号数
	TrackedIDs int
}

// StreamReceiver 流接收器
//
// 状态机：Stopped → Starting → Running → Stopping → Stopped。
// 订阅者通过非阻塞扇出接收条目，慢订阅者不会拖慢轮询循环。
type StreamReceiver interface {
	// Start 打开数据/心跳通道并启动轮询循环；已运行时为空操作
	Start(ctx context.Context) error

	// Stop 请求取消并等待循环退出；已停止时为空操作
	Stop(ctx context.Context) error

	// State 返回当前状态
	State() ReceiverState

	// Subscribe 订阅全部条目
	Subscribe() Subscription[types.SampleItem]

	// SubscribeID 订阅指定 channel_id 的条目
	SubscribeID(channelID int64) Subscription[types.SampleItem]

	// LastValue 返回指定 channel_id 的最新条目
	LastValue(channelID int64) (types.SampleItem, bool)

	// LastValues 返回末值缓存快照
	LastValues() map[int64]types.SampleItem

	// LossCount 返回累计丢失条目数
	LossCount() int64

	// Connectivity 返回当前连通状态
	Connectivity() Connectivity

	// SubscribeConnectivity 订阅连通状态变化
	SubscribeConnectivity() Subscription[ConnectivityEvent]

	// OnConnectivityChange 注册连通状态变化回调（独立协程执行，不阻塞轮询）
	OnConnectivityChange(fn func(ConnectivityEvent))

	// Stats 返回统计快照
	Stats() ReceiverStats
}
