package metrics

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-stationbus/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// Namespace 指标命名空间
	Namespace string

	// ListenAddr HTTP 暴露地址（空则不监听）
	ListenAddr string

	// ProcessMetrics 是否附带 Go 运行时与进程指标
	ProcessMetrics bool

	// Clock 速率计算时钟（测试注入）
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultMetricsConfig()
	return Config{
		Enabled:        d.Enable,
		Namespace:      d.Namespace,
		ListenAddr:     d.ListenAddr,
		ProcessMetrics: true,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.Enabled = cfg.Metrics.Enable
	if cfg.Metrics.Namespace != "" {
		c.Namespace = cfg.Metrics.Namespace
	}
	c.ListenAddr = cfg.Metrics.ListenAddr
	return c
}
