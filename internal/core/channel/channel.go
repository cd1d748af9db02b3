package channel

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-stationbus/internal/core/shm"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("core/channel")

// Observer 通道操作观察者（指标采集）
type Observer interface {
	// ObserveWrite 写入 n 个条目，其中 overwritten 个最旧条目被覆盖
	ObserveWrite(channel string, n, overwritten int)

	// ObserveRead 读出 n 个条目
	ObserveRead(channel string, n int)

	// ObserveLockTimeout 有界等待超时
	ObserveLockTimeout(channel string)
}

type nopObserver struct{}

func (nopObserver) ObserveWrite(string, int, int) {}
func (nopObserver) ObserveRead(string, int)       {}
func (nopObserver) ObserveLockTimeout(string)     {}

// Config 通道打开参数
type Config struct {
	// Dir 共享内存后备目录
	Dir string

	// OpenTimeout 打开段时等待文件锁的时长
	OpenTimeout time.Duration

	// Observer 操作观察者（可为 nil）
	Observer Observer
}

// Channel 共享内存环形缓冲通道
type Channel[T any] struct {
	name     string
	seg      *shm.Segment
	codec    pkgif.ItemCodec[T]
	capacity int32
	observer Observer

	closed atomic.Bool
}

var _ pkgif.Channel[types.SampleItem] = (*Channel[types.SampleItem])(nil)

// Open 创建或附着命名通道
//
// 段或锁无法创建时返回包装了 types.ErrChannelUnavailable 的错误。
func Open[T any](name string, capacity int, codec pkgif.ItemCodec[T], cfg Config) (*Channel[T], error) {
	if capacity < 1 || capacity > shm.MaxCapacity {
		return nil, ErrInvalidCapacity
	}
	if codec == nil || codec.Size() <= 0 {
		return nil, ErrInvalidCodec
	}

	seg, err := shm.Open(name, shm.Options{
		Dir:         cfg.Dir,
		ItemSize:    codec.Size(),
		Capacity:    capacity,
		OpenTimeout: cfg.OpenTimeout,
	})
	if err != nil {
		return nil, err
	}

	obs := cfg.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	c := &Channel[T]{
		name:     name,
		seg:      seg,
		codec:    codec,
		capacity: int32(capacity),
		observer: obs,
	}

	logger.Debug("通道已打开", "name", name, "capacity", capacity, "creator", seg.Creator())
	return c, nil
}

// Name 返回通道名
func (c *Channel[T]) Name() string { return c.name }

// Capacity 返回容量
func (c *Channel[T]) Capacity() int { return int(c.capacity) }

// Creator 本进程是否创建了底层段
func (c *Channel[T]) Creator() bool { return c.seg.Creator() }

// Closed 是否已关闭
func (c *Channel[T]) Closed() bool { return c.closed.Load() }

// ============================================================================
//                              锁
// ============================================================================

func (c *Channel[T]) lock() error {
	if c.closed.Load() {
		return c.closedErr()
	}
	if err := c.seg.Lock(context.Background()); err != nil {
		return fmt.Errorf("channel %q: %w", c.name, err)
	}
	return nil
}

// tryLock 有界等待；超时返回 (false, nil)
func (c *Channel[T]) tryLock(timeout time.Duration) (bool, error) {
	if c.closed.Load() {
		return false, c.closedErr()
	}
	ok, err := c.seg.TryLock(timeout)
	if err != nil {
		return false, fmt.Errorf("channel %q: %w", c.name, err)
	}
	if !ok {
		c.observer.ObserveLockTimeout(c.name)
	}
	return ok, nil
}

func (c *Channel[T]) closedErr() error {
	return fmt.Errorf("channel %q: %w", c.name, types.ErrChannelClosed)
}

// header 读取头部并修复越界值（必须持锁）
func (c *Channel[T]) header() shm.Header {
	h := c.seg.Header()
	if h.Count < 0 || h.Count > c.capacity ||
		h.ReadIndex < 0 || h.ReadIndex >= c.capacity ||
		h.WriteIndex < 0 || h.WriteIndex >= c.capacity {
		logger.Warn("通道头部损坏，已重置", "name", c.name,
			"write", h.WriteIndex, "read", h.ReadIndex, "count", h.Count)
		h = shm.Header{WriterSeq: h.WriterSeq}
	}
	return h
}

// ============================================================================
//                              写入
// ============================================================================

// Write 写入一个条目，满时覆盖最旧条目
func (c *Channel[T]) Write(item T) error {
	return c.WriteBatch([]T{item})
}

// WriteBatch 批量写入
//
// 条目数超过容量时只保留最后 capacity 个，效果等同于逐个写入。
func (c *Channel[T]) WriteBatch(items []T) error {
	if err := c.lock(); err != nil {
		return err
	}
	overwritten := c.writeLocked(items)
	c.seg.Unlock()

	c.observer.ObserveWrite(c.name, len(items), overwritten)
	return nil
}

// TryWrite 在 timeout 内获取锁并写入
func (c *Channel[T]) TryWrite(item T, timeout time.Duration) (bool, error) {
	ok, err := c.tryLock(timeout)
	if !ok || err != nil {
		return false, err
	}
	overwritten := c.writeLocked([]T{item})
	c.seg.Unlock()

	c.observer.ObserveWrite(c.name, 1, overwritten)
	return true, nil
}

// writeLocked 写入条目并返回被覆盖的条目数（必须持锁）
func (c *Channel[T]) writeLocked(items []T) int {
	if len(items) == 0 {
		return 0
	}

	h := c.header()
	total := len(items)
	overwritten := 0

	if skip := total - int(c.capacity); skip > 0 {
		overwritten += skip
		items = items[skip:]
	}

	for _, item := range items {
		if h.Count == c.capacity {
			h.ReadIndex = (h.ReadIndex + 1) % c.capacity
			h.Count--
			overwritten++
		}
		c.codec.Encode(c.seg.Slot(int(h.WriteIndex)), item)
		h.WriteIndex = (h.WriteIndex + 1) % c.capacity
		h.Count++
	}
	h.WriterSeq += uint64(total)

	c.seg.SetHeader(h)
	return overwritten
}

// ============================================================================
//                              读取
// ============================================================================

// Read 读取并移除最旧条目；空时 ok=false
func (c *Channel[T]) Read() (T, bool, error) {
	var zero T
	if err := c.lock(); err != nil {
		return zero, false, err
	}
	items := c.readLocked(1)
	c.seg.Unlock()

	if len(items) == 0 {
		return zero, false, nil
	}
	c.observer.ObserveRead(c.name, 1)
	return items[0], true, nil
}

// ReadBatch 最多读取 max 个条目，按写入顺序返回
func (c *Channel[T]) ReadBatch(max int) ([]T, error) {
	if max <= 0 {
		if c.closed.Load() {
			return nil, c.closedErr()
		}
		return nil, nil
	}
	if err := c.lock(); err != nil {
		return nil, err
	}
	items := c.readLocked(max)
	c.seg.Unlock()

	if len(items) > 0 {
		c.observer.ObserveRead(c.name, len(items))
	}
	return items, nil
}

// TryRead 在 timeout 内获取锁并读取；空或锁超时 ok=false
func (c *Channel[T]) TryRead(timeout time.Duration) (T, bool, error) {
	var zero T
	ok, err := c.tryLock(timeout)
	if !ok || err != nil {
		return zero, false, err
	}
	items := c.readLocked(1)
	c.seg.Unlock()

	if len(items) == 0 {
		return zero, false, nil
	}
	c.observer.ObserveRead(c.name, 1)
	return items[0], true, nil
}

// readLocked 取出最多 max 个条目（必须持锁）
func (c *Channel[T]) readLocked(max int) []T {
	h := c.header()
	n := h.Count
	if int(n) > max {
		n = int32(max)
	}
	if n <= 0 {
		return nil
	}

	out := make([]T, n)
	for i := range out {
		out[i] = c.codec.Decode(c.seg.Slot(int(h.ReadIndex)))
		h.ReadIndex = (h.ReadIndex + 1) % c.capacity
	}
	h.Count -= n

	c.seg.SetHeader(h)
	return out
}

// Peek 读取最旧条目但不移除
func (c *Channel[T]) Peek() (T, bool, error) {
	var zero T
	if err := c.lock(); err != nil {
		return zero, false, err
	}
	defer c.seg.Unlock()

	h := c.header()
	if h.Count == 0 {
		return zero, false, nil
	}
	return c.codec.Decode(c.seg.Slot(int(h.ReadIndex))), true, nil
}

// ============================================================================
//                              状态
// ============================================================================

// Status 返回当前条目数与容量
func (c *Channel[T]) Status() (count, capacity int, err error) {
	if err := c.lock(); err != nil {
		return 0, 0, err
	}
	h := c.header()
	c.seg.Unlock()
	return int(h.Count), int(c.capacity), nil
}

// WriterSeq 返回自段创建以来写入的条目总数
func (c *Channel[T]) WriterSeq() (uint64, error) {
	if err := c.lock(); err != nil {
		return 0, err
	}
	h := c.seg.Header()
	c.seg.Unlock()
	return h.WriterSeq, nil
}

// Clear 清空通道（保留 WriterSeq）
func (c *Channel[T]) Clear() error {
	if err := c.lock(); err != nil {
		return err
	}
	h := c.seg.Header()
	c.seg.SetHeader(shm.Header{WriterSeq: h.WriterSeq})
	c.seg.Unlock()
	return nil
}

// ============================================================================
//                              释放
// ============================================================================

// Close 释放本进程的映射（幂等）
//
// 底层段在其他进程仍然可用。
func (c *Channel[T]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	logger.Debug("通道已关闭", "name", c.name)
	return c.seg.Close()
}

// Unlink 删除后备文件，之后打开同名通道将创建新段
func (c *Channel[T]) Unlink() error {
	return c.seg.Remove()
}
