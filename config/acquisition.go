package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-stationbus/pkg/types"
)

// AcquisitionConfig 采集配置
type AcquisitionConfig struct {
	// SourceID 生产者标识（写入心跳）
	SourceID int64 `json:"source_id"`

	// Signals 信号列表（存储为空时用于初始化存储）
	Signals []types.SignalConfig `json:"signals"`

	// PublishInterval 发布器从重放缓冲区写入数据通道的间隔
	PublishInterval Duration `json:"publish_interval"`

	// PublishBatch 每次发布的最大条目数
	PublishBatch int `json:"publish_batch"`

	// HeartbeatInterval 心跳间隔（应小于接收端 heartbeat_timeout）
	HeartbeatInterval Duration `json:"heartbeat_interval"`

	// ReplayDepth 进程内重放缓冲区容量
	ReplayDepth int `json:"replay_depth"`

	// DedicatedThreads 每个采样器独占 OS 线程并尝试提升优先级
	DedicatedThreads bool `json:"dedicated_threads"`

	// AutoStart 启动后立即开始采样
	AutoStart bool `json:"auto_start"`
}

// DefaultAcquisitionConfig 返回默认采集配置
func DefaultAcquisitionConfig() AcquisitionConfig {
	return AcquisitionConfig{
		SourceID: 1,
		Signals: []types.SignalConfig{
			{ID: 1, Name: "inlet_pressure", Unit: "bar", SampleRateHz: 100, Min: 0, Max: 10},
			{ID: 2, Name: "outlet_pressure", Unit: "bar", SampleRateHz: 100, Min: 0, Max: 10},
			{ID: 3, Name: "fluid_temperature", Unit: "degC", SampleRateHz: 10, Min: -20, Max: 120},
		},
		PublishInterval:   Duration(10 * time.Millisecond),
		PublishBatch:      256,
		HeartbeatInterval: Duration(500 * time.Millisecond),
		ReplayDepth:       8192,
		DedicatedThreads:  true,
		AutoStart:         true,
	}
}

// Validate 验证采集配置
func (c *AcquisitionConfig) Validate() error {
	seen := make(map[int64]struct{}, len(c.Signals))
	for _, sig := range c.Signals {
		if err := sig.Validate(); err != nil {
			return fmt.Errorf("acquisition: %w", err)
		}
		if _, dup := seen[sig.ID]; dup {
			return fmt.Errorf("acquisition: duplicate signal id %d", sig.ID)
		}
		seen[sig.ID] = struct{}{}
	}
	if c.PublishInterval <= 0 {
		return errors.New("acquisition: publish_interval must be positive")
	}
	if c.PublishBatch < 1 {
		return errors.New("acquisition: publish_batch must be >= 1")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("acquisition: heartbeat_interval must be positive")
	}
	if c.ReplayDepth < 1 {
		return errors.New("acquisition: replay_depth must be >= 1")
	}
	return nil
}
