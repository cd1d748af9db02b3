package station

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// ControlMode 控制模式
type ControlMode int32

const (
	// Manual 手动模式，接受阀门命令
	Manual ControlMode = iota
	// Automatic 自动模式，阀门由自动控制逻辑接管
	Automatic
	// Hold 保持模式，暂停采集并冻结阀门
	Hold
)

// String 返回模式名
func (m ControlMode) String() string {
	switch m {
	case Manual:
		return config.ModeManual
	case Automatic:
		return config.ModeAutomatic
	case Hold:
		return config.ModeHold
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// ParseControlMode 解析模式名（大小写不敏感）
func ParseControlMode(name string) (ControlMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.ModeManual:
		return Manual, nil
	case config.ModeAutomatic:
		return Automatic, nil
	case config.ModeHold:
		return Hold, nil
	default:
		return Manual, fmt.Errorf("%w: unknown control mode %q", types.ErrInvalidRequest, name)
	}
}

// ValveRequest 阀门命令请求
type ValveRequest struct {
	ID int `json:"id"`
}

// ValveState 阀门状态
type ValveState struct {
	ID      int   `json:"id"`
	Open    bool  `json:"open"`
	Changed int64 `json:"changed_unix_ms"`
}

// ModeRequest 切换控制模式请求
type ModeRequest struct {
	Mode string `json:"mode"`
}

// ModeReply 控制模式响应
type ModeReply struct {
	Mode     string `json:"mode"`
	Previous string `json:"previous,omitempty"`
}

// Status 站点状态
type Status struct {
	Acquiring bool         `json:"acquiring"`
	Mode      string       `json:"mode"`
	Signals   int          `json:"signals"`
	Produced  int64        `json:"produced"`
	Published int64        `json:"published"`
	Dropped   int64        `json:"dropped"`
	Valves    []ValveState `json:"valves"`
}

// PingRequest 诊断请求
type PingRequest struct {
	Nonce string `json:"nonce,omitempty"`
}

// PingReply 诊断响应
type PingReply struct {
	Nonce    string `json:"nonce,omitempty"`
	Time     int64  `json:"time_unix_ms"`
	UptimeMs int64  `json:"uptime_ms"`
}
