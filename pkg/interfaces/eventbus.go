// Package interfaces 定义 StationBus 公共接口
//
// 本文件定义扇出订阅接口。
package interfaces

// Subscription 扇出订阅
//
// 订阅者通过 Out() 接收条目。缓冲区满时条目被丢弃而不是阻塞发布方，
// Dropped() 返回本订阅累计丢弃数。
type Subscription[T any] interface {
	// Out 返回接收条目的通道（Close 后关闭）
	Out() <-chan T

	// Dropped 返回因缓冲区满而丢弃的条目数
	Dropped() int64

	// Close 取消订阅（幂等）
	Close() error
}
