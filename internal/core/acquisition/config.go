package acquisition

import (
	"time"

	"github.com/dep2p/go-stationbus/config"
)

// Config 采集服务配置
type Config struct {
	SourceID int64

	DataChannel    string
	DataCapacity   int
	StatusChannel  string
	StatusCapacity int

	PublishInterval   time.Duration
	PublishBatch      int
	HeartbeatInterval time.Duration
	ReplayDepth       int

	// DedicatedThreads 采样器独占 OS 线程并尝试提升优先级
	DedicatedThreads bool

	// AutoStart 模块启动时立即开始采样
	AutoStart bool

	ErrorLogInterval time.Duration
}

// ConfigFromUnified 从统一配置创建采集配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	ac := cfg.Acquisition
	return Config{
		SourceID:          ac.SourceID,
		DataChannel:       cfg.Channels.DataName(),
		DataCapacity:      cfg.Channels.DataCapacity,
		StatusChannel:     cfg.Channels.StatusName(),
		StatusCapacity:    cfg.Channels.StatusCapacity,
		PublishInterval:   ac.PublishInterval.Duration(),
		PublishBatch:      ac.PublishBatch,
		HeartbeatInterval: ac.HeartbeatInterval.Duration(),
		ReplayDepth:       ac.ReplayDepth,
		DedicatedThreads:  ac.DedicatedThreads,
		AutoStart:         ac.AutoStart,
		ErrorLogInterval:  cfg.Receiver.ErrorLogInterval.Duration(),
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}
