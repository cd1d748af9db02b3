// Package interfaces 定义 StationBus 的公共接口
//
// 一个接口文件对应 internal/core 下的一个实现目录：
//   - channel.go    - 共享内存环形缓冲通道（internal/core/channel）
//   - eventbus.go   - 扇出订阅（internal/core/fanout）
//   - receiver.go   - 流接收器（internal/core/receiver）
//   - router.go     - 命令路由、序列化器、命令客户端（router / registrar / rpc）
//   - instrument.go - 仪器与采集服务（internal/core/acquisition）
//   - storage.go    - 存储引擎与信号配置存储（internal/core/storage）
//
// # 依赖方向
//
//	cmd → stationbus → internal/app → internal/core → pkg/interfaces → pkg/types
//
// 禁止反向依赖。
package interfaces
