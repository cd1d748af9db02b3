// Package shm 实现共享内存段（RingBufferSegment）
//
// 每个段对应一个后备文件 <Dir>/<name>.shm，以 MAP_SHARED 映射到各进程地址空间。
// 段由 64 字节小端前导区和 capacity 个定长槽位组成：
//
//	offset  size  field
//	0       8     magic
//	8       4     layout version
//	12      4     item size
//	16      4     capacity
//	20      4     write index
//	24      4     read index
//	28      4     count
//	32      8     writer sequence（累计写入条目数）
//	40      24    reserved
//	64      ...   slots
//
// # 创建与附着
//
// 第一个打开名字的进程（creator）在文件锁内截断文件并写入前导区，
// 其后的进程在同一把文件锁内校验 magic/version/itemSize/capacity。
// 任何不一致都返回 types.ErrChannelUnavailable，不存在降级模式。
//
// # 互斥
//
// Lock 先获取进程内互斥，再以 flock(LOCK_EX) 获取跨进程互斥。
// 前导区与槽位只能在持锁期间访问。
package shm
