package fanout

import (
	"errors"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
)

var logger = log.Logger("core/fanout")

// ErrClosed Hub 已关闭
var ErrClosed = errors.New("fanout: hub closed")

// DefaultBuffer 默认订阅缓冲区大小
const DefaultBuffer = 16

// Hub 扇出中心
type Hub[K comparable, T any] struct {
	name   string
	buffer int

	mu     sync.RWMutex
	all    []*Subscription[T]
	topics map[K][]*Subscription[T]
	closed bool

	published atomic.Int64
	dropCount atomic.Int64
}

// New 创建扇出中心
//
// buffer <= 0 时使用 DefaultBuffer。
func New[K comparable, T any](name string, buffer int) *Hub[K, T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub[K, T]{
		name:   name,
		buffer: buffer,
		topics: make(map[K][]*Subscription[T]),
	}
}

// Subscribe 订阅全部条目
//
// Hub 已关闭时返回一个已关闭的订阅。
func (h *Hub[K, T]) Subscribe() *Subscription[T] {
	sub := newSubscription[T](h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.closeOut()
		return sub
	}
	h.all = append(h.all, sub)
	sub.remove = func() { h.removeAll(sub) }
	return sub
}

// SubscribeKey 订阅指定键的条目
func (h *Hub[K, T]) SubscribeKey(key K) *Subscription[T] {
	sub := newSubscription[T](h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.closeOut()
		return sub
	}
	h.topics[key] = append(h.topics[key], sub)
	sub.remove = func() { h.removeKey(key, sub) }
	return sub
}

// Publish 发布条目到全量订阅者与 key 的订阅者
func (h *Hub[K, T]) Publish(key K, item T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	h.published.Add(1)
	for _, sub := range h.all {
		h.deliver(sub, item)
	}
	for _, sub := range h.topics[key] {
		h.deliver(sub, item)
	}
}

// Broadcast 只发布到全量订阅者
func (h *Hub[K, T]) Broadcast(item T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	h.published.Add(1)
	for _, sub := range h.all {
		h.deliver(sub, item)
	}
}

// deliver 非阻塞发送（调用方持读锁）
func (h *Hub[K, T]) deliver(sub *Subscription[T], item T) {
	select {
	case sub.out <- item:
	default:
		sub.dropped.Add(1)
		dropped := h.dropCount.Add(1)

		// 每丢弃 100 个条目警告一次，避免日志泛滥
		if dropped%100 == 1 {
			logger.Warn("慢消费者检测",
				"hub", h.name,
				"dropped", dropped,
				"reason", "subscriber buffer full")
		}
	}
}

// Topics 返回当前存在的按键主题数
func (h *Hub[K, T]) Topics() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}

// Subscribers 返回全量订阅者与按键订阅者总数
func (h *Hub[K, T]) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.all)
	for _, subs := range h.topics {
		n += len(subs)
	}
	return n
}

// Published 返回发布次数
func (h *Hub[K, T]) Published() int64 { return h.published.Load() }

// Dropped 返回全部订阅者累计丢弃数
func (h *Hub[K, T]) Dropped() int64 { return h.dropCount.Load() }

// Close 关闭全部订阅（幂等）
func (h *Hub[K, T]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, sub := range h.all {
		sub.closeOut()
	}
	for _, subs := range h.topics {
		for _, sub := range subs {
			sub.closeOut()
		}
	}
	h.all = nil
	h.topics = make(map[K][]*Subscription[T])
	return nil
}

func (h *Hub[K, T]) removeAll(sub *Subscription[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all = removeSub(h.all, sub)
	sub.closeOut()
}

func (h *Hub[K, T]) removeKey(key K, sub *Subscription[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := removeSub(h.topics[key], sub)
	if len(subs) == 0 {
		delete(h.topics, key)
	} else {
		h.topics[key] = subs
	}
	sub.closeOut()
}

func removeSub[T any](subs []*Subscription[T], sub *Subscription[T]) []*Subscription[T] {
	for i, s := range subs {
		if s == sub {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 扇出订阅
type Subscription[T any] struct {
	out     chan T
	dropped atomic.Int64

	remove    func()
	closeOnce sync.Once
	outOnce   sync.Once
}

var _ pkgif.Subscription[int] = (*Subscription[int])(nil)

func newSubscription[T any](buffer int) *Subscription[T] {
	return &Subscription[T]{out: make(chan T, buffer)}
}

// Out 返回接收通道（Close 后关闭）
func (s *Subscription[T]) Out() <-chan T {
	return s.out
}

// Dropped 返回因缓冲区满而丢弃的条目数
func (s *Subscription[T]) Dropped() int64 {
	return s.dropped.Load()
}

// Close 取消订阅
//
// 并发安全，可以多次调用。先从 Hub 移除再关闭通道，
// 发布方持读锁发送，因此不会向已关闭的通道发送。
func (s *Subscription[T]) Close() error {
	s.closeOnce.Do(func() {
		if s.remove != nil {
			s.remove()
			return
		}
		s.closeOut()
	})
	return nil
}

// closeOut 关闭输出通道（调用方持 Hub 写锁或订阅从未注册）
func (s *Subscription[T]) closeOut() {
	s.outOnce.Do(func() { close(s.out) })
}
