package rpc

import (
	"time"

	"github.com/dep2p/go-stationbus/config"
)

// Config RPC 配置（服务端与客户端共用）
type Config struct {
	// CommandChannel 命令通道名与容量
	CommandChannel  string
	CommandCapacity int

	// ReplyPrefix 响应通道名前缀，完整名为 ReplyPrefix + clientID
	ReplyPrefix   string
	ReplyCapacity int

	PollInterval     time.Duration
	HandlerTimeout   time.Duration
	CallTimeout      time.Duration
	LockTimeout      time.Duration
	ErrorBackoff     time.Duration
	ErrorLogInterval time.Duration

	MaxConcurrent  int
	ReplyCacheSize int
}

// ConfigFromUnified 从统一配置创建 RPC 配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		CommandChannel:   cfg.Channels.CommandName(),
		CommandCapacity:  cfg.Channels.CommandCapacity,
		ReplyPrefix:      cfg.Channels.ReplyName(""),
		ReplyCapacity:    cfg.Channels.ReplyCapacity,
		PollInterval:     cfg.Router.PollInterval.Duration(),
		HandlerTimeout:   cfg.Router.HandlerTimeout.Duration(),
		CallTimeout:      cfg.Router.CallTimeout.Duration(),
		LockTimeout:      cfg.Channels.LockTimeout.Duration(),
		ErrorBackoff:     cfg.Receiver.ErrorBackoff.Duration(),
		ErrorLogInterval: cfg.Receiver.ErrorLogInterval.Duration(),
		MaxConcurrent:    cfg.Router.MaxConcurrent,
		ReplyCacheSize:   cfg.Router.ReplyCacheSize,
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// replyName 返回客户端的响应通道名
func (c Config) replyName(clientID string) string {
	return c.ReplyPrefix + clientID
}
