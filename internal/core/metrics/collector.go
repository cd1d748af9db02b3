package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/receiver"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/rpc"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// Collector 汇总各组件事件的 Prometheus 收集器
type Collector struct {
	registry   *prometheus.Registry
	throughput *ThroughputCounter

	itemsWritten     *prometheus.CounterVec
	itemsRead        *prometheus.CounterVec
	itemsOverwritten *prometheus.CounterVec
	lockTimeouts     *prometheus.CounterVec

	samplesReceived prometheus.Counter
	samplesLost     prometheus.Counter
	pollErrors      prometheus.Counter
	connected       prometheus.Gauge

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec

	inflight  prometheus.Gauge
	cacheHits prometheus.Counter
}

var (
	_ channel.Observer  = (*Collector)(nil)
	_ receiver.Observer = (*Collector)(nil)
	_ router.Observer   = (*Collector)(nil)
	_ rpc.Observer      = (*Collector)(nil)
)

// NewCollector 创建收集器并注册到独立的 Registry
func NewCollector(cfg Config) *Collector {
	ns := cfg.Namespace
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry:   reg,
		throughput: NewThroughputCounter(cfg.Clock),

		itemsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "channel",
			Name:      "items_written_total",
			Help:      "Total number of items written to ring-buffer channels",
		}, []string{"channel"}),
		itemsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "channel",
			Name:      "items_read_total",
			Help:      "Total number of items read from ring-buffer channels",
		}, []string{"channel"}),
		itemsOverwritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "channel",
			Name:      "items_overwritten_total",
			Help:      "Total number of unread items overwritten by writers",
		}, []string{"channel"}),
		lockTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "channel",
			Name:      "lock_timeouts_total",
			Help:      "Total number of bounded lock waits that timed out",
		}, []string{"channel"}),

		samplesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "receiver",
			Name:      "samples_total",
			Help:      "Total number of samples received",
		}),
		samplesLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "receiver",
			Name:      "samples_lost_total",
			Help:      "Total number of samples detected as lost by sequence gaps",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "receiver",
			Name:      "poll_errors_total",
			Help:      "Total number of receiver poll errors",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "receiver",
			Name:      "connected",
			Help:      "Whether the producer heartbeat is current (1 = connected)",
		}),

		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "router",
			Name:      "commands_total",
			Help:      "Total number of routed commands by status",
		}, []string{"route", "status"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "router",
			Name:      "command_duration_seconds",
			Help:      "Command handler duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route"}),

		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "rpc",
			Name:      "inflight",
			Help:      "Number of commands currently executing",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "rpc",
			Name:      "cache_hits_total",
			Help:      "Total number of retried requests answered from the response cache",
		}),
	}

	reg.MustRegister(
		c.itemsWritten,
		c.itemsRead,
		c.itemsOverwritten,
		c.lockTimeouts,
		c.samplesReceived,
		c.samplesLost,
		c.pollErrors,
		c.connected,
		c.commands,
		c.commandDuration,
		c.inflight,
		c.cacheHits,
	)
	if cfg.ProcessMetrics {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return c
}

// Registry 返回指标注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics HTTP 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Throughput 返回通道吞吐计数器
func (c *Collector) Throughput() *ThroughputCounter {
	return c.throughput
}

// ============================================================================
//                              channel.Observer
// ============================================================================

// ObserveWrite 记录通道写入
func (c *Collector) ObserveWrite(name string, n, overwritten int) {
	c.itemsWritten.WithLabelValues(name).Add(float64(n))
	if overwritten > 0 {
		c.itemsOverwritten.WithLabelValues(name).Add(float64(overwritten))
	}
	c.throughput.LogWrite(name, n, overwritten)
}

// ObserveRead 记录通道读出
func (c *Collector) ObserveRead(name string, n int) {
	c.itemsRead.WithLabelValues(name).Add(float64(n))
	c.throughput.LogRead(name, n)
}

// ObserveLockTimeout 记录有界等待超时
func (c *Collector) ObserveLockTimeout(name string) {
	c.lockTimeouts.WithLabelValues(name).Inc()
}

// ============================================================================
//                              receiver.Observer
// ============================================================================

// ObserveReceived 记录接收的采样数
func (c *Collector) ObserveReceived(n int) {
	c.samplesReceived.Add(float64(n))
}

// ObserveLoss 记录丢失的采样数
func (c *Collector) ObserveLoss(n int64) {
	if n > 0 {
		c.samplesLost.Add(float64(n))
	}
}

// ObservePollError 记录轮询错误
func (c *Collector) ObservePollError() {
	c.pollErrors.Inc()
}

// ObserveConnectivity 记录连通状态
func (c *Collector) ObserveConnectivity(state pkgif.Connectivity) {
	if state == pkgif.Connected {
		c.connected.Set(1)
		return
	}
	c.connected.Set(0)
}

// ============================================================================
//                              router.Observer
// ============================================================================

// ObserveRoute 记录命令分发结果
func (c *Collector) ObserveRoute(route string, status types.StatusCode, elapsed time.Duration) {
	c.commands.WithLabelValues(route, status.String()).Inc()
	c.commandDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ============================================================================
//                              rpc.Observer
// ============================================================================

// ObserveInflight 记录执行中请求数变化
func (c *Collector) ObserveInflight(delta int) {
	c.inflight.Add(float64(delta))
}

// ObserveCacheHit 记录响应缓存命中
func (c *Collector) ObserveCacheHit() {
	c.cacheHits.Inc()
}
