package types

import (
	"errors"
	"fmt"
)

// SignalConfig 单个采集信号的配置
//
// 由持久化层在启动时一次性读取，channel_id 即 SignalConfig.ID。
type SignalConfig struct {
	// ID 信号 ID，写入 SampleItem.ChannelID
	ID int64 `json:"id"`

	// Name 信号名称
	Name string `json:"name"`

	// Unit 工程单位
	Unit string `json:"unit,omitempty"`

	// SampleRateHz 采样频率
	SampleRateHz float64 `json:"sample_rate_hz"`

	// Min/Max 量程，超出量程的采样标记为 Uncertain
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate 验证信号配置
func (c SignalConfig) Validate() error {
	if c.Name == "" {
		return errors.New("signal: name cannot be empty")
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("signal %q: sample_rate_hz must be positive", c.Name)
	}
	if c.Max < c.Min {
		return fmt.Errorf("signal %q: max must be >= min", c.Name)
	}
	return nil
}

// InRange 判断值是否在量程内（Min==Max 表示未设置量程）
func (c SignalConfig) InRange(v float64) bool {
	if c.Min == c.Max {
		return true
	}
	return v >= c.Min && v <= c.Max
}
