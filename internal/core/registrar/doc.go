// Package registrar 把普通函数/方法适配为命令处理器
//
// 路由表在启动时显式构造：
//
//	table := []registrar.Route{
//	    {Route: "station/start", Op: ctl.Start},
//	    {Route: "valve/open", Op: ctl.OpenValve},
//	}
//	err := registrar.New(serializer).RegisterAll(router, table)
//
// 支持的操作形态（P 为负载类型，R 为结果类型）：
//
//	func()                      func(P)
//	func(context.Context)       func(context.Context, P)
//
// 返回值可以是：无、error、R、(R, error) 或异步结果 <-chan R。
// 不支持的形态在启动期返回 ErrUnsupportedShape。
//
// 适配器负责：负载缺失返回 InvalidRequest，解码/编码失败返回 SerializationError，
// 操作返回的错误交给路由器按错误分类转换。
package registrar
