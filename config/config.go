// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 各自提供 DefaultXxxConfig() 与 Validate()。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Channels.Prefix = "Bench1"
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("stationd.json")
package config

import "fmt"

// 运行角色
const (
	// RoleAcquisition 采集进程：采样、发布、处理命令
	RoleAcquisition = "acquisition"

	// RoleConsumer 消费进程：接收数据流、发送命令
	RoleConsumer = "consumer"

	// RoleAll 单进程同时承担两种角色（调试/演示）
	RoleAll = "all"
)

// Config 是 StationBus 的完整配置结构
//
//   - Channels: 通道命名与容量
//   - Receiver: 流接收器
//   - Router: 命令路由与 RPC
//   - Acquisition: 采样与发布
//   - Storage: 信号配置存储
//   - Station: 站点控制
//   - Metrics: Prometheus 指标
//   - Log: 日志
type Config struct {
	// Role 运行角色（acquisition/consumer/all）
	Role string `json:"role"`

	// Channels 通道配置
	Channels ChannelsConfig `json:"channels"`

	// Receiver 流接收器配置
	Receiver ReceiverConfig `json:"receiver"`

	// Router 命令路由配置
	Router RouterConfig `json:"router"`

	// Acquisition 采集配置
	Acquisition AcquisitionConfig `json:"acquisition"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Station 站点控制配置
	Station StationConfig `json:"station"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Role:        RoleAll,
		Channels:    DefaultChannelsConfig(),
		Receiver:    DefaultReceiverConfig(),
		Router:      DefaultRouterConfig(),
		Acquisition: DefaultAcquisitionConfig(),
		Storage:     DefaultStorageConfig(),
		Station:     DefaultStationConfig(),
		Metrics:     DefaultMetricsConfig(),
		Log:         DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := ValidateRole(c.Role); err != nil {
		return err
	}
	if err := c.Channels.Validate(); err != nil {
		return err
	}
	if err := c.Receiver.Validate(); err != nil {
		return err
	}
	if err := c.Router.Validate(); err != nil {
		return err
	}
	// 内置站控路由使用 JSON 结构体
	if c.IsProducer() && c.Router.Serializer == SerializerProto {
		return fmt.Errorf("config: serializer %q cannot serve station routes in role %q, use %q",
			SerializerProto, c.Role, SerializerJSON)
	}
	if err := c.Acquisition.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Station.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// ValidateRole 验证角色名
func ValidateRole(role string) error {
	switch role {
	case RoleAcquisition, RoleConsumer, RoleAll:
		return nil
	default:
		return fmt.Errorf("config: unknown role %q", role)
	}
}

// IsProducer 角色是否运行采集侧组件
func (c *Config) IsProducer() bool {
	return c.Role == RoleAcquisition || c.Role == RoleAll
}

// IsConsumer 角色是否运行消费侧组件
func (c *Config) IsConsumer() bool {
	return c.Role == RoleConsumer || c.Role == RoleAll
}
