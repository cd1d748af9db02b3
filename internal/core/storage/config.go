package storage

import (
	"time"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/storage/engine"
)

// Config Storage 模块配置
type Config struct {
	// Enable 是否启用持久化
	Enable bool

	// Path BadgerDB 数据库目录
	Path string

	// SyncWrites 是否同步写入
	SyncWrites bool

	// SeedFromConfig 存储为空时写入配置文件中的信号
	SeedFromConfig bool

	// GCInterval 垃圾回收间隔
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultStorageConfig()
	return Config{
		Enable:         d.Enable,
		Path:           d.DBPath(),
		SeedFromConfig: d.SeedFromConfig,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// ConfigFromUnified 从统一配置创建 Storage 配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}

	c.Enable = cfg.Storage.Enable
	c.SyncWrites = cfg.Storage.SyncWrites
	c.SeedFromConfig = cfg.Storage.SeedFromConfig
	if cfg.Storage.DataDir != "" {
		c.Path = cfg.Storage.DBPath()
	}
	return c
}

// ToEngineConfig 转换为引擎配置
func (c *Config) ToEngineConfig() *engine.Config {
	engineCfg := engine.DefaultConfig(c.Path)
	engineCfg.SyncWrites = c.SyncWrites
	engineCfg.Badger.GCInterval = c.GCInterval
	engineCfg.Badger.GCDiscardRatio = c.GCDiscardRatio
	return engineCfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrInvalidConfig
	}
	if c.GCInterval > 0 && c.GCInterval < time.Minute {
		c.GCInterval = time.Minute
	}
	if c.GCDiscardRatio <= 0 || c.GCDiscardRatio > 1 {
		c.GCDiscardRatio = 0.5
	}
	return nil
}

// WithPath 设置存储路径
func (c Config) WithPath(path string) Config {
	c.Path = path
	return c
}
