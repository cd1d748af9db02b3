// Package channel 实现共享内存环形缓冲通道与进程内通道注册表
//
// # Channel
//
// Channel[T] 在 shm.Segment 之上实现定长环形缓冲：
//   - 每个操作持有一把覆盖整个段的跨进程锁
//   - 写满时丢弃最旧条目（read_index 前移、count 减一）后再写入
//   - 批量读写只在最后更新一次头部
//   - 空通道读取返回 ok=false，不是错误
//   - 关闭后任何操作返回 types.ErrChannelClosed
//
// # Registry
//
// Registry 按名称缓存已打开的通道，同名第二次 GetOrCreate 返回同一实例。
// 元素类型或容量不一致返回 ErrTypeMismatch / ErrCapacityMismatch。
package channel
