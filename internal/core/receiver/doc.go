// Package receiver 实现 StreamReceiver：把拉取式通道桥接为推送式多订阅者流
//
// # 状态机
//
//	Stopped → Starting → Running → Stopping → Stopped
//
// Start 打开数据通道与心跳通道（无法打开时启动失败，不存在降级模式），
// 然后启动轮询协程。Stop 请求取消并等待协程退出；取消只在两次轮询之间生效，
// 因此通道锁不会在持有期间被放弃。
//
// # 丢失检测
//
// 按 channel_id 记录最后序列号。sequence > last+1 时丢失数增加 sequence-last-1；
// sequence <= last 视为生产者重启，重置基线而不计入丢失。丢失检测只用于诊断，不影响投递。
//
// # 连通性
//
// 由低频心跳通道推导：初始为 Disconnected；收到任意心跳转为 Connected；
// 超过 heartbeat_timeout 未收到心跳转为 Disconnected。
//
// # 错误策略
//
// 轮询中的任何错误（包括 panic）都被捕获并以限速日志记录，循环退避后继续，永不终止。
package receiver
