package shm

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-stationbus/pkg/types"
)

var (
	// ErrUnavailable 后备文件或文件锁无法创建/打开
	ErrUnavailable = fmt.Errorf("shm: %w", types.ErrChannelUnavailable)

	// ErrInvalidName 名称为空
	ErrInvalidName = fmt.Errorf("%w: shm: empty segment name", types.ErrChannelUnavailable)

	// ErrInvalidGeometry 条目大小或容量无效
	ErrInvalidGeometry = fmt.Errorf("%w: shm: item size and capacity must be positive", types.ErrChannelUnavailable)

	// ErrLayoutMismatch 已存在的段与请求的布局不一致
	ErrLayoutMismatch = fmt.Errorf("%w: shm: segment layout mismatch", types.ErrChannelUnavailable)

	// ErrUnsupported 当前平台不支持共享内存段
	ErrUnsupported = fmt.Errorf("%w: shm: unsupported platform", types.ErrChannelUnavailable)

	// ErrClosed 段已关闭
	ErrClosed = fmt.Errorf("shm: %w", types.ErrChannelClosed)

	// errWouldBlock 文件锁被其他进程持有
	errWouldBlock = errors.New("shm: lock would block")
)
