package config

import (
	"errors"
	"time"
)

// ChannelsConfig 通道配置
//
// 通道名由前缀加固定后缀组成，所有进程必须使用相同的前缀与容量：
//   - <Prefix>Data            采样数据
//   - <Prefix>Status          心跳
//   - <Prefix>Command         命令请求
//   - <Prefix>Reply.<client>  命令响应（每个客户端一个）
type ChannelsConfig struct {
	// Prefix 通道名前缀
	Prefix string `json:"prefix"`

	// Dir 共享内存后备目录（空则 /dev/shm，不存在时回退到临时目录）
	Dir string `json:"dir,omitempty"`

	// DataCapacity 数据通道容量（条目数）
	DataCapacity int `json:"data_capacity"`

	// StatusCapacity 心跳通道容量
	StatusCapacity int `json:"status_capacity"`

	// CommandCapacity 命令通道容量
	CommandCapacity int `json:"command_capacity"`

	// ReplyCapacity 响应通道容量
	ReplyCapacity int `json:"reply_capacity"`

	// OpenTimeout 打开段时等待文件锁的时长
	OpenTimeout Duration `json:"open_timeout"`

	// LockTimeout 有界读写（TryWrite/TryRead）等待锁的时长
	LockTimeout Duration `json:"lock_timeout"`
}

// DefaultChannelsConfig 返回默认通道配置
func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		Prefix:          "Station",
		DataCapacity:    4096,
		StatusCapacity:  64,
		CommandCapacity: 256,
		ReplyCapacity:   256,
		OpenTimeout:     Duration(5 * time.Second),
		LockTimeout:     Duration(100 * time.Millisecond),
	}
}

// Validate 验证通道配置
func (c *ChannelsConfig) Validate() error {
	if c.Prefix == "" {
		return errors.New("channels: prefix cannot be empty")
	}
	if c.DataCapacity < 1 || c.StatusCapacity < 1 || c.CommandCapacity < 1 || c.ReplyCapacity < 1 {
		return errors.New("channels: capacities must be >= 1")
	}
	if c.OpenTimeout <= 0 {
		return errors.New("channels: open_timeout must be positive")
	}
	if c.LockTimeout < 0 {
		return errors.New("channels: lock_timeout cannot be negative")
	}
	return nil
}

// DataName 返回数据通道名
func (c *ChannelsConfig) DataName() string { return c.Prefix + "Data" }

// StatusName 返回心跳通道名
func (c *ChannelsConfig) StatusName() string { return c.Prefix + "Status" }

// CommandName 返回命令通道名
func (c *ChannelsConfig) CommandName() string { return c.Prefix + "Command" }

// ReplyName 返回指定客户端的响应通道名
func (c *ChannelsConfig) ReplyName(clientID string) string {
	return c.Prefix + "Reply." + clientID
}
