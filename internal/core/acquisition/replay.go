package acquisition

import "sync"

// ReplayBuffer 有界的进程内重放缓冲区
//
// 保留最近 capacity 个条目作为历史，其中尚未被 Drain 的部分为待发布条目。
// 待发布条目已满时丢弃最旧的待发布条目，生产者永不阻塞。
type ReplayBuffer[T any] struct {
	mu       sync.Mutex
	items    []T
	written  uint64
	consumed uint64
	dropped  int64
}

// NewReplayBuffer 创建重放缓冲区，capacity 最小为 1
func NewReplayBuffer[T any](capacity int) *ReplayBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ReplayBuffer[T]{items: make([]T, capacity)}
}

// Push 追加条目；返回是否因此丢弃了一个待发布条目
func (b *ReplayBuffer[T]) Push(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := uint64(len(b.items))
	dropped := false
	if b.written-b.consumed == size {
		b.consumed++
		b.dropped++
		dropped = true
	}
	b.items[b.written%size] = item
	b.written++
	return dropped
}

// Drain 取出最多 max 个最旧的待发布条目
func (b *ReplayBuffer[T]) Drain(max int) []T {
	if max <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(uint64(max), b.written-b.consumed)
	if n == 0 {
		return nil
	}
	out := b.copyRange(b.consumed, n)
	b.consumed += n
	return out
}

// Replay 返回最近 n 个条目（含已发布的），不改变待发布状态
func (b *ReplayBuffer[T]) Replay(n int) []T {
	if n <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	history := min(b.written, uint64(len(b.items)))
	k := min(uint64(n), history)
	if k == 0 {
		return nil
	}
	return b.copyRange(b.written-k, k)
}

func (b *ReplayBuffer[T]) copyRange(from, n uint64) []T {
	size := uint64(len(b.items))
	out := make([]T, n)
	for i := uint64(0); i < n; i++ {
		out[i] = b.items[(from+i)%size]
	}
	return out
}

// Len 返回待发布条目数
func (b *ReplayBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.written - b.consumed)
}

// Cap 返回容量
func (b *ReplayBuffer[T]) Cap() int {
	return len(b.items)
}

// Dropped 返回累计丢弃的待发布条目数
func (b *ReplayBuffer[T]) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
