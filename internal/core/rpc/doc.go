// Package rpc 在共享内存通道上实现命令请求/响应
//
// 请求写入公共命令通道 <prefix>Command，每个客户端拥有自己的响应通道
// <prefix>Reply.<clientID>。服务端轮询命令通道，在有界执行器上经
// CommandRouter 分发，再把响应写回请求指定的响应通道。
//
// 通道只承载定长条目，因此请求与响应都编码为 Frame（FrameSize 字节），
// 负载上限为 MaxPayload。
//
//	server := rpc.NewServer(cfg, registry, router)
//	client := rpc.NewClient(cfg, registry, serializer)
//	resp, err := client.Call(ctx, "station/status", nil)
package rpc
