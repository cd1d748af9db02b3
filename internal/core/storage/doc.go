// Package storage 提供信号配置的持久化存储
//
// Storage 模块基于 BadgerDB 实现，启动时由采集服务读取一次信号配置。
//
// # 架构
//
//	┌─────────────────────────────────────────────┐
//	│        acquisition / station controller     │
//	└─────────────────────────────────────────────┘
//	                      │ pkgif.SignalStore
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│  SignalStore  (sig/ 前缀，JSON 值)           │
//	│  kv.Store     带前缀隔离的 KV 抽象           │
//	│  engine/badger BadgerDB 实现                 │
//	└─────────────────────────────────────────────┘
//
// # 键空间
//
//	前缀   | 说明
//	-------|------------------------------------
//	sig/   | 信号配置，键为 8 字节有序编码的 ID
//	meta/  | 存储元数据
//
// # 使用示例
//
//	eng, err := storage.New("/var/lib/stationbus/stationbus.db")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	signals := storage.NewSignalStore(eng)
//	list, err := signals.List()
package storage
