package config

import (
	"errors"
	"fmt"
	"time"
)

// 序列化器名称
const (
	SerializerJSON  = "json"
	SerializerProto = "proto"
)

// RouterConfig 命令路由与 RPC 配置
type RouterConfig struct {
	// HandlerTimeout 单个请求的处理超时
	HandlerTimeout Duration `json:"handler_timeout"`

	// MaxConcurrent 同时执行的处理器上限
	MaxConcurrent int `json:"max_concurrent"`

	// ReplyCacheSize 按 request_id 缓存的响应数（0 禁用）
	ReplyCacheSize int `json:"reply_cache_size"`

	// Serializer 进程使用的负载序列化器（json/proto）
	Serializer string `json:"serializer"`

	// PollInterval 命令/响应通道的轮询间隔
	PollInterval Duration `json:"poll_interval"`

	// CallTimeout 客户端调用的默认超时（ctx 无截止时间时使用）
	CallTimeout Duration `json:"call_timeout"`
}

// DefaultRouterConfig 返回默认路由配置
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		HandlerTimeout: Duration(5 * time.Second),
		MaxConcurrent:  8,
		ReplyCacheSize: 1024,
		Serializer:     SerializerJSON,
		PollInterval:   Duration(5 * time.Millisecond),
		CallTimeout:    Duration(10 * time.Second),
	}
}

// Validate 验证路由配置
func (c *RouterConfig) Validate() error {
	if c.HandlerTimeout <= 0 {
		return errors.New("router: handler_timeout must be positive")
	}
	if c.MaxConcurrent < 1 {
		return errors.New("router: max_concurrent must be >= 1")
	}
	if c.ReplyCacheSize < 0 {
		return errors.New("router: reply_cache_size cannot be negative")
	}
	switch c.Serializer {
	case SerializerJSON, SerializerProto:
	default:
		return fmt.Errorf("router: unknown serializer %q", c.Serializer)
	}
	if c.PollInterval <= 0 {
		return errors.New("router: poll_interval must be positive")
	}
	if c.CallTimeout <= 0 {
		return errors.New("router: call_timeout must be positive")
	}
	return nil
}
