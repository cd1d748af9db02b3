// Package fanout 实现非阻塞的多订阅者扇出
//
// Hub 维护两类订阅：
//   - 全量订阅：接收所有发布的条目
//   - 按键订阅：只接收指定键的条目，按键懒创建、按订阅数引用计数，
//     最后一个订阅关闭时主题被删除
//
// 发布永不阻塞：订阅者缓冲区满时条目被丢弃并计数，
// 每丢弃 100 个条目输出一次慢消费者警告。
package fanout
