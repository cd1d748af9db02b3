// Package app 提供 StationBus 应用编排层
//
// app 包负责：
// - 按角色组装 fx 模块
// - 依赖注入协调
// - 生命周期管理
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/app/station"
	"github.com/dep2p/go-stationbus/internal/core/acquisition"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/metrics"
	"github.com/dep2p/go-stationbus/internal/core/receiver"
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/rpc"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
)

var logger = log.Logger("app")

// ErrNotBuilt Bootstrap 尚未构建
var ErrNotBuilt = errors.New("app: bootstrap not built")

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 解析配置
// - 组装 fx 模块
// - 管理应用生命周期
type Bootstrap struct {
	config       *config.Config
	extra        []fx.Option
	startTimeout time.Duration
	stopTimeout  time.Duration

	fxApp   *fx.App
	runtime *Runtime
	logFile *os.File
}

// handles 从 fx 容器取出的组件（全部可选）
type handles struct {
	fx.In

	Registry    *channel.Registry    `optional:"true"`
	Registrar   *registrar.Registrar `optional:"true"`
	Receiver    *receiver.Receiver   `optional:"true"`
	Client      *rpc.Client          `optional:"true"`
	Router      *router.Router       `optional:"true"`
	Server      *rpc.Server          `optional:"true"`
	Acquisition *acquisition.Service `optional:"true"`
	Controller  *station.Controller  `optional:"true"`
	Signals     pkgif.SignalStore    `optional:"true"`
	Metrics     *metrics.Collector   `optional:"true"`
}

// NewBootstrap 创建引导程序；cfg 为 nil 时使用默认配置
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	b := &Bootstrap{
		config:       cfg,
		startTimeout: 30 * time.Second,
		stopTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config 返回配置
func (b *Bootstrap) Config() *config.Config {
	return b.config
}

// Build 构建运行时（不启动）
func (b *Bootstrap) Build() (*Runtime, error) {
	if b.runtime != nil {
		return b.runtime, nil
	}
	if err := config.ValidateAll(b.config); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	// 应用日志配置（必须在所有模块初始化之前）
	if err := b.setupLogging(); err != nil {
		return nil, fmt.Errorf("设置日志失败: %w", err)
	}

	var h handles
	b.fxApp = fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Supply(b.config),
		ModulesFor(b.config),
		fx.Options(b.extra...),
		fx.Populate(&h),
	)
	if err := b.fxApp.Err(); err != nil {
		b.closeLogFile()
		return nil, fmt.Errorf("组装模块失败: %w", err)
	}

	b.runtime = &Runtime{
		Registry:    h.Registry,
		Registrar:   h.Registrar,
		Receiver:    h.Receiver,
		Client:      h.Client,
		Router:      h.Router,
		Server:      h.Server,
		Acquisition: h.Acquisition,
		Controller:  h.Controller,
		Signals:     h.Signals,
		Metrics:     h.Metrics,
		stop:        b.Stop,
	}
	logger.Debug("运行时已构建", "role", b.config.Role)
	return b.runtime, nil
}

// Start 构建并启动运行时
func (b *Bootstrap) Start(ctx context.Context) (*Runtime, error) {
	rt, err := b.Build()
	if err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, b.startTimeout)
	defer cancel()

	if err := b.fxApp.Start(startCtx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}
	logger.Info("StationBus 已启动", "role", b.config.Role)
	return rt, nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return ErrNotBuilt
	}
	defer b.closeLogFile()

	stopCtx, cancel := context.WithTimeout(ctx, b.stopTimeout)
	defer cancel()

	if err := b.fxApp.Stop(stopCtx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	logger.Info("StationBus 已停止")
	return nil
}

// setupLogging 配置日志输出
//
// 指定了 Log.File 时把所有日志重定向到文件。
func (b *Bootstrap) setupLogging() error {
	lc := b.config.Log
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return err
	}

	out := os.Stderr
	if lc.File != "" {
		file, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		b.logFile = file
		out = file
	}

	if lc.JSON {
		log.SetJSONOutput(out, level)
	} else {
		log.SetOutputWithLevel(out, level)
	}
	if lc.File != "" {
		logger.Info("日志文件初始化成功", "path", lc.File)
	}
	return nil
}

func (b *Bootstrap) closeLogFile() {
	if b.logFile == nil {
		return
	}
	log.SetOutputWithLevel(os.Stderr, log.LevelInfo)
	_ = b.logFile.Close()
	b.logFile = nil
}
