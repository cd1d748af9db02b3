package rpc

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-stationbus/pkg/types"
)

var (
	// ErrPayloadTooLarge 负载超过帧容量
	ErrPayloadTooLarge = fmt.Errorf("rpc: payload exceeds %d bytes: %w", MaxPayload, types.ErrInvalidRequest)

	// ErrFieldTooLong 帧中的字符串字段超长
	ErrFieldTooLong = fmt.Errorf("rpc: frame field too long: %w", types.ErrInvalidRequest)

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = fmt.Errorf("rpc: client closed: %w", types.ErrChannelClosed)

	// ErrNotRunning 服务端/客户端未运行
	ErrNotRunning = errors.New("rpc: not running")

	// ErrStopping 上一次 Stop 超时，轮询循环尚未退出
	ErrStopping = errors.New("rpc: server still stopping")
)
