package router

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Params Router 模块依赖参数
type Params struct {
	fx.In

	Clock    clock.Clock `optional:"true"`
	Observer Observer    `optional:"true"`
}

// Result Router 模块输出
type Result struct {
	fx.Out

	Router        *Router
	CommandRouter pkgif.CommandRouter
}

// Module 返回 Router Fx 模块
func Module() fx.Option {
	return fx.Module("router",
		fx.Provide(ProvideRouter),
	)
}

// ProvideRouter 提供路由器
func ProvideRouter(p Params) Result {
	var opts []Option
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	r := New(opts...)
	return Result{Router: r, CommandRouter: r}
}
