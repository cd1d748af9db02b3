// Package kv 提供带前缀隔离的 KV 存储抽象层
//
// 键空间约定：
//   - sig/ - 信号配置
//   - meta/ - 存储元数据（布局版本等）
package kv
