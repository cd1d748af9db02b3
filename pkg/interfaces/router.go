// Package interfaces 定义 StationBus 公共接口
//
// 本文件定义命令路由相关接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-stationbus/pkg/types"
)

// CommandHandler 命令处理函数
//
// 返回的 error 由路由器经 types.StatusFromError 转换为响应状态码。
// 处理器应当轮询 ctx；即使忽略 ctx，路由器也会在取消时返回 Timeout 响应。
type CommandHandler func(ctx context.Context, req *types.CommandRequest) (*types.CommandResponse, error)

// CommandRouter 命令路由器
//
// Route 永不 panic，永不返回 nil，所有失败都编码在响应状态中。
type CommandRouter interface {
	// Register 注册路由；重复注册返回错误
	Register(route string, handler CommandHandler) error

	// Unregister 注销路由
	Unregister(route string)

	// Routes 返回已注册路由（已排序）
	Routes() []string

	// Route 分发请求并返回响应
	Route(ctx context.Context, req *types.CommandRequest) *types.CommandResponse
}

// Serializer 负载序列化器
//
// 每个进程只使用一个序列化器，调用方与处理方需事先约定。
type Serializer interface {
	// Name 序列化器名称（如 "json"、"proto"）
	Name() string

	// Marshal 编码
	Marshal(v any) ([]byte, error)

	// Unmarshal 解码到 v（v 必须是指针）
	Unmarshal(data []byte, v any) error
}

// CommandClient 命令客户端
type CommandClient interface {
	// Call 发送原始负载并等待响应
	Call(ctx context.Context, route string, payload []byte) (*types.CommandResponse, error)

	// Invoke 用进程序列化器编码 in、解码结果到 out（out 可为 nil）
	Invoke(ctx context.Context, route string, in, out any) error
}
