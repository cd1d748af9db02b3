// Package interfaces 定义 StationBus 公共接口
//
// 本文件定义存储接口：持久化层提供设备/信号配置，启动时读取一次。
package interfaces

import "github.com/dep2p/go-stationbus/pkg/types"

// Engine 键值存储引擎
//
// 线程安全：实现必须保证所有方法的线程安全性。
type Engine interface {
	// Get 获取值；键不存在返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 设置键值对
	Put(key, value []byte) error

	// Delete 删除键（键不存在不报错）
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// Scan 按前缀遍历，fn 返回 false 停止
	Scan(prefix []byte, fn func(key, value []byte) bool) error

	// Close 关闭引擎（幂等）
	Close() error
}

// SignalStore 信号配置存储
type SignalStore interface {
	// Save 保存信号配置（按 ID 覆盖）
	Save(sig types.SignalConfig) error

	// Load 按 ID 读取
	Load(id int64) (types.SignalConfig, error)

	// List 列出全部信号（按 ID 升序）
	List() ([]types.SignalConfig, error)

	// Delete 删除信号配置
	Delete(id int64) error
}
