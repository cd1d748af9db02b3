package config

import (
	"errors"
	"fmt"
)

// 控制模式名
const (
	ModeManual    = "manual"
	ModeAutomatic = "automatic"
	ModeHold      = "hold"
)

// StationConfig 站点控制配置
type StationConfig struct {
	// Valves 阀门数量（ID 从 1 开始）
	Valves int `json:"valves"`

	// InitialMode 启动时的控制模式
	InitialMode string `json:"initial_mode"`
}

// DefaultStationConfig 返回默认站点配置
func DefaultStationConfig() StationConfig {
	return StationConfig{
		Valves:      4,
		InitialMode: ModeManual,
	}
}

// Validate 验证站点配置
func (c *StationConfig) Validate() error {
	if c.Valves < 0 {
		return errors.New("station: valves cannot be negative")
	}
	switch c.InitialMode {
	case ModeManual, ModeAutomatic, ModeHold:
		return nil
	default:
		return fmt.Errorf("station: unknown initial_mode %q", c.InitialMode)
	}
}
