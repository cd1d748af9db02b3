package registrar

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Params Registrar 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Registrar 模块输出
type Result struct {
	fx.Out

	Registrar  *Registrar
	Serializer pkgif.Serializer
}

// Module 返回 Registrar Fx 模块
func Module() fx.Option {
	return fx.Module("registrar",
		fx.Provide(ProvideRegistrar),
	)
}

// ProvideRegistrar 按配置选择序列化器并创建注册器
func ProvideRegistrar(p Params) (Result, error) {
	name := config.SerializerJSON
	if p.UnifiedCfg != nil {
		name = p.UnifiedCfg.Router.Serializer
	}
	s, err := NewSerializer(name)
	if err != nil {
		return Result{}, err
	}
	return Result{Registrar: New(s), Serializer: s}, nil
}
