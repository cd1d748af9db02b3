// Package interfaces 定义 StationBus 公共接口
//
// 本文件定义 Channel 接口：共享内存环形缓冲区上的命名通道。
package interfaces

import "time"

// ItemCodec 定长条目编解码器
//
// 通道只搬运字节，条目的二进制布局由 codec 决定。
// 同一通道名的所有读写方必须使用相同的 Size 与布局。
type ItemCodec[T any] interface {
	// Size 返回单个条目的字节数（必须 > 0 且固定不变）
	Size() int

	// Encode 将 v 写入 dst（len(dst) == Size()）
	Encode(dst []byte, v T)

	// Decode 从 src 解码（len(src) == Size()）
	Decode(src []byte) T
}

// Channel 命名的定长环形缓冲通道
//
// 所有操作都在一把覆盖整个段的跨进程互斥锁内完成。
// 写满时丢弃最旧条目，写入方永不阻塞在容量上。
//
// 关闭后的任何操作返回 types.ErrChannelClosed。
type Channel[T any] interface {
	// Name 返回通道名
	Name() string

	// Write 写入一个条目，满时覆盖最旧条目
	Write(item T) error

	// WriteBatch 批量写入，头部只更新一次
	WriteBatch(items []T) error

	// TryWrite 在 timeout 内获取锁并写入；锁超时返回 false
	TryWrite(item T, timeout time.Duration) (bool, error)

	// Read 读取并移除最旧条目；空时 ok=false
	Read() (item T, ok bool, err error)

	// ReadBatch 最多读取 max 个条目（max <= 0 返回 nil）
	ReadBatch(max int) ([]T, error)

	// TryRead 在 timeout 内获取锁并读取；空或锁超时 ok=false
	TryRead(timeout time.Duration) (item T, ok bool, err error)

	// Peek 读取最旧条目但不移除
	Peek() (item T, ok bool, err error)

	// Status 返回当前条目数与容量
	Status() (count, capacity int, err error)

	// Clear 清空通道
	Clear() error

	// Close 释放本进程的映射与锁（幂等）
	Close() error
}
