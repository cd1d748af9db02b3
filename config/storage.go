package config

import (
	"errors"
	"path/filepath"
)

// StorageConfig 存储配置
//
// 信号配置保存在 BadgerDB 中，启动时读取一次：
//
//	${DataDir}/
//	└── stationbus.db/
type StorageConfig struct {
	// Enable 是否启用持久化（禁用时直接使用 Acquisition.Signals）
	Enable bool `json:"enable"`

	// DataDir 数据目录路径
	DataDir string `json:"data_dir"`

	// SeedFromConfig 存储为空时写入 Acquisition.Signals
	SeedFromConfig bool `json:"seed_from_config"`

	// SyncWrites 每次写入同步到磁盘
	SyncWrites bool `json:"sync_writes"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Enable:         true,
		DataDir:        "./data",
		SeedFromConfig: true,
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	if c.Enable && c.DataDir == "" {
		return errors.New("storage: data_dir cannot be empty")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "stationbus.db")
}
