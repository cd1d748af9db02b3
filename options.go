package stationbus

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// 运行角色
const (
	RoleAcquisition = config.RoleAcquisition
	RoleConsumer    = config.RoleConsumer
	RoleAll         = config.RoleAll
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config
	extra  []fx.Option

	startTimeout time.Duration
	stopTimeout  time.Duration
}

func defaultOptions() *options {
	return &options{
		config:       config.NewConfig(),
		startTimeout: 30 * time.Second,
		stopTimeout:  30 * time.Second,
	}
}

// WithConfig 使用完整配置（后续选项在其基础上修改）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithRole 设置运行角色
func WithRole(role string) Option {
	return func(o *options) error {
		if err := config.ValidateRole(role); err != nil {
			return err
		}
		o.config.Role = role
		return nil
	}
}

// WithChannelPrefix 设置通道名前缀
func WithChannelPrefix(prefix string) Option {
	return func(o *options) error {
		if prefix == "" {
			return fmt.Errorf("channel prefix cannot be empty")
		}
		o.config.Channels.Prefix = prefix
		return nil
	}
}

// WithChannelDir 设置共享内存段目录
func WithChannelDir(dir string) Option {
	return func(o *options) error {
		o.config.Channels.Dir = dir
		return nil
	}
}

// WithSignals 设置采集信号（存储为空时用于初始化）
func WithSignals(signals ...types.SignalConfig) Option {
	return func(o *options) error {
		for _, sig := range signals {
			if err := sig.Validate(); err != nil {
				return err
			}
		}
		o.config.Acquisition.Signals = signals
		return nil
	}
}

// WithDataDir 设置信号存储目录；空字符串禁用持久化
func WithDataDir(dir string) Option {
	return func(o *options) error {
		o.config.Storage.Enable = dir != ""
		o.config.Storage.DataDir = dir
		return nil
	}
}

// WithMetrics 启用指标；addr 非空时暴露 HTTP /metrics
func WithMetrics(enable bool, addr string) Option {
	return func(o *options) error {
		o.config.Metrics.Enable = enable
		o.config.Metrics.ListenAddr = addr
		return nil
	}
}

// WithAutoStart 设置启动后是否立即开始采样
func WithAutoStart(enable bool) Option {
	return func(o *options) error {
		o.config.Acquisition.AutoStart = enable
		return nil
	}
}

// WithFxOptions 追加 fx 选项（替换组件、注入时钟）
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.extra = append(o.extra, opts...)
		return nil
	}
}

// WithTimeouts 设置启动与停止超时
func WithTimeouts(start, stop time.Duration) Option {
	return func(o *options) error {
		if start > 0 {
			o.startTimeout = start
		}
		if stop > 0 {
			o.stopTimeout = stop
		}
		return nil
	}
}
