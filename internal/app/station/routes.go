package station

import (
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// 路由名
const (
	RouteStart   = "station/start"
	RouteStop    = "station/stop"
	RouteStatus  = "station/status"
	RouteOpen    = "valve/open"
	RouteClose   = "valve/close"
	RouteValve   = "valve/state"
	RouteSetMode = "control/mode"
	RouteGetMode = "control/get-mode"
	RouteSignals = "signals/list"
	RoutePing    = "diagnostics/ping"
)

// Routes 返回控制器的路由表
func Routes(c *Controller) []registrar.Route {
	return []registrar.Route{
		{Route: RouteStart, Op: c.Start},
		{Route: RouteStop, Op: c.Stop},
		{Route: RouteStatus, Op: c.Status},
		{Route: RouteOpen, Op: c.OpenValve},
		{Route: RouteClose, Op: c.CloseValve},
		{Route: RouteValve, Op: c.ValveState},
		{Route: RouteSetMode, Op: c.SetMode},
		{Route: RouteGetMode, Op: c.GetMode},
		{Route: RouteSignals, Op: c.ListSignals},
		{Route: RoutePing, Op: c.Ping},
	}
}

// Register 把控制器的全部路由注册到 router（全部成功或全部不注册）
func Register(reg *registrar.Registrar, router pkgif.CommandRouter, c *Controller) error {
	if err := reg.RegisterAll(router, Routes(c)); err != nil {
		return err
	}
	logger.Info("站点命令已注册", "routes", len(Routes(c)))
	return nil
}
