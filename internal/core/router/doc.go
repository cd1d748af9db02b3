// Package router 实现命令路由器
//
// Router 把路由字符串映射到已注册的处理器，是异常传播的边界：
//   - 路由未注册返回 HandlerNotFound 响应
//   - 处理器返回的错误经 types.StatusFromError 转换为状态码
//   - 处理器 panic 转换为 InternalError 响应
//   - ctx 在处理期间取消或超时立即返回 Timeout 响应，即使处理器忽略 ctx
//
// 重复注册同一路由是启动期配置错误。
package router
