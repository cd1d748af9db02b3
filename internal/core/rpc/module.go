package rpc

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// ServerParams 服务端模块依赖参数
type ServerParams struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Registry   *channel.Registry
	Router     pkgif.CommandRouter
	Clock      clock.Clock `optional:"true"`
	Observer   Observer    `optional:"true"`
}

// ClientParams 客户端模块依赖参数
type ClientParams struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Registry   *channel.Registry
	Serializer pkgif.Serializer
	Clock      clock.Clock `optional:"true"`
}

// ClientResult 客户端模块输出
type ClientResult struct {
	fx.Out

	Client        *Client
	CommandClient pkgif.CommandClient
}

// ServerModule 返回命令服务端 Fx 模块（采集进程）
//
// 生命周期:
//   - OnStart: 打开命令通道并开始轮询
//   - OnStop: 停止轮询并等待处理器写回响应
func ServerModule() fx.Option {
	return fx.Module("rpc-server",
		fx.Provide(ProvideServer),
		fx.Invoke(registerServerLifecycle),
	)
}

// ClientModule 返回命令客户端 Fx 模块（消费进程）
func ClientModule() fx.Option {
	return fx.Module("rpc-client",
		fx.Provide(ProvideClient),
		fx.Invoke(registerClientLifecycle),
	)
}

// ProvideServer 提供服务端
func ProvideServer(p ServerParams) (*Server, error) {
	opts := []Option{WithObserver(p.Observer)}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	return NewServer(ConfigFromUnified(p.UnifiedCfg), p.Registry, p.Router, opts...)
}

// ProvideClient 提供客户端
func ProvideClient(p ClientParams) ClientResult {
	var opts []Option
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	c := NewClient(ConfigFromUnified(p.UnifiedCfg), p.Registry, p.Serializer, opts...)
	return ClientResult{Client: c, CommandClient: c}
}

func registerServerLifecycle(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

func registerClientLifecycle(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return c.Close()
		},
	})
}
