// Package stationbus 提供测试站点的进程间数据与命令总线
//
// StationBus 连接采集进程与消费进程：采集侧把带时间戳的采样
// 写入共享内存环形缓冲通道，消费侧轮询并分发给订阅者；
// 消费侧通过命令通道调用采集侧注册的操作。
//
// # 角色
//
//	角色          | 组件
//	--------------|--------------------------------------------------
//	acquisition   | 采样器、发布器、心跳、命令服务端、站点控制、存储
//	consumer      | 流接收器、命令客户端
//	all           | 以上全部（单进程调试/演示）
//
// # 快速开始
//
//	st, err := stationbus.New(
//	    stationbus.WithRole(stationbus.RoleConsumer),
//	    stationbus.WithChannelPrefix("Rig1"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	if err := st.Start(ctx); err != nil {
//	    return err
//	}
//
//	sub := st.Receiver().SubscribeID(1)
//	defer sub.Close()
//	for item := range sub.Out() {
//	    fmt.Println(item.ChannelID, item.Value, item.Quality)
//	}
//
// # 状态机
//
//	Idle → Starting → Running → Stopping → Closed
//
// Stop 之后 Station 不能再次启动，需要重新 New。
package stationbus
