// Package acquisition 实现采集侧生产者
//
// 每个信号一个 Sampler，按采样率在独立协程（可选独占 OS 线程）中读取仪器，
// 结果写入进程内 ReplayBuffer；Publisher 定期把缓冲区批量写入 <prefix>Data，
// HeartbeatPublisher 定期向 <prefix>Status 写入心跳。
//
// 仪器读取失败不会终止采样：该次采样以 Quality=Bad、Value=NaN 写出，
// 下游依据质量而不是数据流中断来判断故障。
//
//	采样器 ──Push──▶ ReplayBuffer ──Drain──▶ Publisher ──WriteBatch──▶ <prefix>Data
//	HeartbeatPublisher ──Write──▶ <prefix>Status
package acquisition
