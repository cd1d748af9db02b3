// Package engine 定义存储引擎的内部接口与配置
//
// 本包扩展 pkg/interfaces 中的公共 Engine 接口，增加启动（后台 GC）、
// 同步与统计。实现位于 engine/badger。
package engine
