package shm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("core/shm")

const (
	// DefaultOpenTimeout 打开段时等待文件锁的默认时长
	DefaultOpenTimeout = 5 * time.Second

	minBackoff = 20 * time.Microsecond
	maxBackoff = time.Millisecond
)

// Options 段打开参数
type Options struct {
	// Dir 后备文件目录（空则使用 DefaultDir()）
	Dir string

	// ItemSize 单个槽位字节数
	ItemSize int

	// Capacity 槽位数量
	Capacity int

	// OpenTimeout 创建/附着时等待文件锁的时长
	OpenTimeout time.Duration
}

// DefaultDir 返回默认后备目录：优先 /dev/shm，否则 os.TempDir()
func DefaultDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// FileName 将通道名转换为后备文件名
//
// 除字母、数字、'.'、'-'、'_' 外的字符替换为 '_'。
func FileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name) + ".shm"
}

// mapping 平台相关的映射句柄
type mapping interface {
	bytes() []byte
	tryLockFile() error
	unlockFile() error
	close() error
}

// Segment 已映射的共享内存段
//
// 一个 Segment 由本进程内唯一的所有者（Channel）持有，
// 原始字节不对外暴露，只能通过持锁后的 Header/Slot 访问。
type Segment struct {
	name    string
	path    string
	geo     geometry
	creator bool

	m    mapping
	data []byte

	// mu 进程内互斥（容量为 1 的 channel，支持限时获取）
	mu chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
}

// Open 创建或附着命名段
func Open(name string, opts Options) (*Segment, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if opts.ItemSize <= 0 || opts.Capacity <= 0 || opts.Capacity > MaxCapacity {
		return nil, ErrInvalidGeometry
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir()
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}

	geo := geometry{itemSize: opts.ItemSize, capacity: opts.Capacity}
	path := filepath.Join(opts.Dir, FileName(name))

	m, creator, err := openMapping(path, geo, opts.OpenTimeout)
	if err != nil {
		return nil, fmt.Errorf("open segment %q: %w", name, err)
	}

	logger.Debug("共享内存段已打开",
		"name", name,
		"path", path,
		"creator", creator,
		"itemSize", geo.itemSize,
		"capacity", geo.capacity)

	return &Segment{
		name:    name,
		path:    path,
		geo:     geo,
		creator: creator,
		m:       m,
		data:    m.bytes(),
		mu:      make(chan struct{}, 1),
	}, nil
}

// Name 返回段名
func (s *Segment) Name() string { return s.name }

// Path 返回后备文件路径
func (s *Segment) Path() string { return s.path }

// Creator 本句柄是否创建了该段
func (s *Segment) Creator() bool { return s.creator }

// ItemSize 返回槽位字节数
func (s *Segment) ItemSize() int { return s.geo.itemSize }

// Capacity 返回槽位数量
func (s *Segment) Capacity() int { return s.geo.capacity }

// ============================================================================
//                              互斥
// ============================================================================

// Lock 获取进程内与跨进程互斥
//
// ctx 取消时返回包装了 types.ErrTimeout 的错误。
func (s *Segment) Lock(ctx context.Context) error {
	select {
	case s.mu <- struct{}{}:
	default:
		select {
		case s.mu <- struct{}{}:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", types.ErrTimeout, ctx.Err())
		}
	}

	if s.closed.Load() {
		<-s.mu
		return ErrClosed
	}

	if err := pollLock(ctx, s.m.tryLockFile); err != nil {
		<-s.mu
		return err
	}
	return nil
}

// TryLock 在 timeout 内获取互斥；超时返回 false
//
// timeout <= 0 时只尝试一次。
func (s *Segment) TryLock(timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.Lock(ctx)
	if errors.Is(err, types.ErrTimeout) {
		return false, nil
	}
	return err == nil, err
}

// Unlock 释放互斥
func (s *Segment) Unlock() {
	if err := s.m.unlockFile(); err != nil {
		logger.Warn("释放文件锁失败", "name", s.name, "error", err)
	}
	<-s.mu
}

// pollLock 以指数退避轮询非阻塞文件锁，直到成功或 ctx 结束
func pollLock(ctx context.Context, try func() error) error {
	backoff := minBackoff
	for {
		err := try()
		if err == nil {
			return nil
		}
		if !errors.Is(err, errWouldBlock) {
			return fmt.Errorf("%w: flock: %w", types.ErrChannelUnavailable, err)
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w: %w", types.ErrTimeout, ctx.Err())
		case <-t.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// ============================================================================
//                              持锁访问
// ============================================================================

// Header 读取头部（必须持锁）
func (s *Segment) Header() Header {
	return readHeader(s.data)
}

// SetHeader 写回头部（必须持锁）
func (s *Segment) SetHeader(h Header) {
	writeHeader(s.data, h)
}

// Slot 返回第 i 个槽位的字节视图（必须持锁）
func (s *Segment) Slot(i int) []byte {
	off := HeaderSize + i*s.geo.itemSize
	return s.data[off : off+s.geo.itemSize : off+s.geo.itemSize]
}

// ============================================================================
//                              释放
// ============================================================================

// Closed 是否已关闭
func (s *Segment) Closed() bool {
	return s.closed.Load()
}

// Close 解除映射并关闭描述符（幂等）
//
// 等待进行中的持锁操作结束后才解除映射。
func (s *Segment) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.mu <- struct{}{}
		err = s.m.close()
		s.data = nil
		<-s.mu

		logger.Debug("共享内存段已关闭", "name", s.name)
	})
	return err
}

// Remove 删除后备文件
//
// 已附着的进程保留各自的映射，之后打开同名段的进程会创建新段。
func (s *Segment) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
