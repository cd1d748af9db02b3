// Package metrics 提供 StationBus 运行指标
//
// Collector 同时实现各核心组件的 Observer 接口，把事件记录到
// 独立的 Prometheus Registry，并维护每个通道的吞吐速率。
//
// # 指标
//
//	名称                                   | 类型      | 标签
//	---------------------------------------|-----------|-----------------
//	channel_items_written_total            | Counter   | channel
//	channel_items_read_total               | Counter   | channel
//	channel_items_overwritten_total        | Counter   | channel
//	channel_lock_timeouts_total            | Counter   | channel
//	receiver_samples_total                 | Counter   |
//	receiver_samples_lost_total            | Counter   |
//	receiver_poll_errors_total             | Counter   |
//	receiver_connected                     | Gauge     |
//	router_commands_total                  | Counter   | route, status
//	router_command_duration_seconds        | Histogram | route
//	rpc_inflight                           | Gauge     |
//	rpc_cache_hits_total                   | Counter   |
//
// # 使用示例
//
//	c := metrics.NewCollector(metrics.DefaultConfig())
//	ch, _ := channel.NewRegistry(channel.Config{Observer: c})
//	http.Handle("/metrics", c.Handler())
package metrics
