package channel

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// entry 注册表条目
type entry struct {
	ch       any
	itemType reflect.Type
	capacity int
	closed   func() bool
	close    func() error
	unlink   func() error
}

// Registry 进程内通道注册表
//
// 同名通道在本进程内只打开一次底层段。
type Registry struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry 创建注册表
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
}

// Config 返回注册表使用的通道打开参数
func (r *Registry) Config() Config {
	return r.cfg
}

// GetOrCreate 返回已打开的同名通道，或创建/附着新通道
//
// 同名通道已以其他元素类型或容量打开时返回 ErrTypeMismatch / ErrCapacityMismatch。
// 已被直接 Close 的通道会被重新打开。
func GetOrCreate[T any](r *Registry, name string, maxItems int, codec pkgif.ItemCodec[T]) (*Channel[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	itemType := reflect.TypeOf((*T)(nil)).Elem()

	if e, ok := r.entries[name]; ok && !e.closed() {
		ch, ok := e.ch.(*Channel[T])
		if !ok {
			return nil, fmt.Errorf("%w: %q is %s, requested %s", ErrTypeMismatch, name, e.itemType, itemType)
		}
		if e.capacity != maxItems {
			return nil, fmt.Errorf("%w: %q has capacity %d, requested %d", ErrCapacityMismatch, name, e.capacity, maxItems)
		}
		return ch, nil
	}

	ch, err := Open(name, maxItems, codec, r.cfg)
	if err != nil {
		return nil, err
	}

	r.entries[name] = &entry{
		ch:       ch,
		itemType: itemType,
		capacity: maxItems,
		closed:   ch.Closed,
		close:    ch.Close,
		unlink:   ch.Unlink,
	}
	return ch, nil
}

// Exists 本进程是否已打开该通道
func (r *Registry) Exists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	return ok && !e.closed()
}

// Remove 关闭并移除通道（底层段对其他进程保持可用）
func (r *Registry) Remove(name string) error {
	e, err := r.take(name)
	if err != nil {
		return err
	}
	return e.close()
}

// Destroy 关闭、移除通道并删除后备文件
func (r *Registry) Destroy(name string) error {
	e, err := r.take(name)
	if err != nil {
		return err
	}
	return multierr.Append(e.close(), e.unlink())
}

func (r *Registry) take(name string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(r.entries, name)
	return e, nil
}

// Names 返回已打开的通道名（已排序）
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name, e := range r.entries {
		if !e.closed() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Close 关闭全部通道
func (r *Registry) Close() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	var err error
	for name, e := range entries {
		if cerr := e.close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %q: %w", name, cerr))
		}
	}
	if len(entries) > 0 {
		logger.Info("通道注册表已关闭", "channels", len(entries))
	}
	return err
}
