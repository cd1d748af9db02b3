package channel

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-stationbus/pkg/types"
)

var (
	// ErrInvalidCapacity 容量必须 >= 1
	ErrInvalidCapacity = fmt.Errorf("%w: channel: capacity must be >= 1", types.ErrChannelUnavailable)

	// ErrInvalidCodec codec 为空或 Size() <= 0
	ErrInvalidCodec = fmt.Errorf("%w: channel: invalid item codec", types.ErrChannelUnavailable)

	// ErrTypeMismatch 同名通道已以其他元素类型打开
	ErrTypeMismatch = errors.New("channel: item type mismatch")

	// ErrCapacityMismatch 同名通道已以其他容量打开
	ErrCapacityMismatch = errors.New("channel: capacity mismatch")

	// ErrNotFound 注册表中不存在该通道
	ErrNotFound = errors.New("channel: not found")
)
