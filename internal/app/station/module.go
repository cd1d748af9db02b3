package station

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Params Station 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg  *config.Config `optional:"true"`
	Acquisition pkgif.Acquisition
	Store       pkgif.SignalStore `optional:"true"`
	Clock       clock.Clock       `optional:"true"`
}

// Module 返回 Station Fx 模块
//
// 提供 *Controller，并在构建时把全部站点命令注册到 CommandRouter。
func Module() fx.Option {
	return fx.Module("station",
		fx.Provide(ProvideController),
		fx.Invoke(registerRoutes),
	)
}

// ConfigFromUnified 从统一配置创建控制器配置
func ConfigFromUnified(cfg *config.Config) (Config, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	mode, err := ParseControlMode(cfg.Station.InitialMode)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Valves:      cfg.Station.Valves,
		InitialMode: mode,
	}, nil
}

// ProvideController 创建站点控制器
func ProvideController(p Params) (*Controller, error) {
	cfg, err := ConfigFromUnified(p.UnifiedCfg)
	if err != nil {
		return nil, err
	}
	cfg.Clock = p.Clock
	return NewController(cfg, p.Acquisition, p.Store)
}

func registerRoutes(reg *registrar.Registrar, router pkgif.CommandRouter, c *Controller) error {
	return Register(reg, router, c)
}
