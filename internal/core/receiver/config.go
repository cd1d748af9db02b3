package receiver

import (
	"time"

	"github.com/dep2p/go-stationbus/config"
)

// Config 接收器配置
type Config struct {
	// DataChannel 数据通道名与容量
	DataChannel  string
	DataCapacity int

	// StatusChannel 心跳通道名与容量
	StatusChannel  string
	StatusCapacity int

	PollInterval     time.Duration
	BatchSize        int
	HeartbeatTimeout time.Duration
	ErrorBackoff     time.Duration
	SubscriberBuffer int
	ErrorLogInterval time.Duration
}

// ConfigFromUnified 从统一配置创建接收器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	rc := cfg.Receiver
	return Config{
		DataChannel:      cfg.Channels.DataName(),
		DataCapacity:     cfg.Channels.DataCapacity,
		StatusChannel:    cfg.Channels.StatusName(),
		StatusCapacity:   cfg.Channels.StatusCapacity,
		PollInterval:     rc.PollInterval.Duration(),
		BatchSize:        rc.BatchSize,
		HeartbeatTimeout: rc.HeartbeatTimeout.Duration(),
		ErrorBackoff:     rc.ErrorBackoff.Duration(),
		SubscriberBuffer: rc.SubscriberBuffer,
		ErrorLogInterval: rc.ErrorLogInterval.Duration(),
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}
