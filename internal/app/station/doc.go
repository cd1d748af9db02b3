// Package station 实现站点控制命令
//
// Controller 持有采集状态、阀门状态与控制模式，并通过 HandlerRegistrar
// 以显式路由表注册到 CommandRouter：
//
//	路由               | 请求            | 响应
//	-------------------|-----------------|-------------
//	station/start      | -               | Status
//	station/stop       | -               | Status
//	station/status     | -               | Status
//	valve/open         | ValveRequest    | ValveState
//	valve/close        | ValveRequest    | ValveState
//	valve/state        | ValveRequest    | ValveState
//	control/mode       | ModeRequest     | ModeReply
//	control/get-mode   | -               | ModeReply
//	signals/list       | -               | []SignalConfig
//	diagnostics/ping   | PingRequest     | PingReply
//
// 阀门命令只在 Manual 模式下接受；Hold 模式暂停采集且拒绝 station/start。
package station
