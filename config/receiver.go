package config

import (
	"errors"
	"time"
)

// ReceiverConfig 流接收器配置
type ReceiverConfig struct {
	// PollInterval 轮询间隔
	PollInterval Duration `json:"poll_interval"`

	// BatchSize 每次轮询最多取出的条目数
	BatchSize int `json:"batch_size"`

	// HeartbeatTimeout 超过该时长未收到心跳视为断开
	HeartbeatTimeout Duration `json:"heartbeat_timeout"`

	// ErrorBackoff 轮询出错后的退避时长
	ErrorBackoff Duration `json:"error_backoff"`

	// SubscriberBuffer 每个订阅者的缓冲区大小
	SubscriberBuffer int `json:"subscriber_buffer"`

	// ErrorLogInterval 轮询错误日志的最小间隔
	ErrorLogInterval Duration `json:"error_log_interval"`
}

// DefaultReceiverConfig 返回默认接收器配置
func DefaultReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		PollInterval:     Duration(10 * time.Millisecond),
		BatchSize:        256,
		HeartbeatTimeout: Duration(3 * time.Second),
		ErrorBackoff:     Duration(time.Second),
		SubscriberBuffer: 1024,
		ErrorLogInterval: Duration(time.Second),
	}
}

// Validate 验证接收器配置
func (c *ReceiverConfig) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("receiver: poll_interval must be positive")
	}
	if c.BatchSize < 1 {
		return errors.New("receiver: batch_size must be >= 1")
	}
	if c.HeartbeatTimeout <= 0 {
		return errors.New("receiver: heartbeat_timeout must be positive")
	}
	if c.ErrorBackoff < c.PollInterval {
		return errors.New("receiver: error_backoff must be >= poll_interval")
	}
	if c.SubscriberBuffer < 0 {
		return errors.New("receiver: subscriber_buffer cannot be negative")
	}
	return nil
}
