// Package types 定义 StationBus 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - errors.go    - 错误分类与 StatusFromError
//   - sample.go    - SampleItem / Quality / SampleCodec（40 字节固定布局）
//   - heartbeat.go - HeartbeatItem / HeartbeatCodec（32 字节固定布局）
//   - command.go   - CommandRequest / CommandResponse / StatusCode
//   - signal.go    - SignalConfig（持久化层提供的信号配置）
//
// # 线上布局
//
// 所有跨进程传输的条目都使用小端、定长、显式填充的布局，
// 读写双方独立编译也能保持一致。修改布局会破坏所有使用该通道名的进程。
package types
