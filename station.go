package stationbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/app"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
)

var logger = log.Logger("stationbus")

// Station StationBus 运行实例
//
// 组件在 Start 时组装，Start 之前各访问器返回 nil。
type Station struct {
	config    *config.Config
	bootstrap *app.Bootstrap

	mu      sync.RWMutex
	state   State
	runtime *app.Runtime
}

// New 创建 Station（不启动）
func New(opts ...Option) (*Station, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if err := config.ValidateAll(o.config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Station{
		config: o.config,
		bootstrap: app.NewBootstrap(o.config,
			app.WithModules(o.extra...),
			app.WithStartTimeout(o.startTimeout),
			app.WithStopTimeout(o.stopTimeout),
		),
		state: StateIdle,
	}, nil
}

// Start 组装并启动全部组件
func (s *Station) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrStationClosed
	case StateIdle:
	default:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateStarting
	s.mu.Unlock()

	logger.Info("正在启动 Station", "role", s.config.Role, "prefix", s.config.Channels.Prefix)
	rt, err := s.bootstrap.Start(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// fx 启动失败时已回滚已启动的钩子
		s.state = StateClosed
		logger.Error("Station 启动失败", "error", err)
		return err
	}
	s.runtime = rt
	s.state = StateRunning
	return nil
}

// Stop 停止全部组件；Stop 之后 Station 进入 Closed
func (s *Station) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrStationClosed
	case StateRunning:
	default:
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopping
	s.mu.Unlock()

	logger.Info("正在停止 Station")
	err := s.bootstrap.Stop(ctx)

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
	return err
}

// Close 释放资源（幂等）
func (s *Station) Close() error {
	s.mu.Lock()
	state := s.state
	if state != StateRunning {
		s.state = StateClosed
	}
	s.mu.Unlock()

	if state != StateRunning {
		return nil
	}
	return s.Stop(context.Background())
}

// State 返回当前状态
func (s *Station) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Config 返回配置
func (s *Station) Config() *config.Config {
	return s.config
}

func (s *Station) rt() *app.Runtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runtime
}

// Receiver 返回流接收器（consumer/all 角色）
func (s *Station) Receiver() pkgif.StreamReceiver {
	if rt := s.rt(); rt != nil && rt.Receiver != nil {
		return rt.Receiver
	}
	return nil
}

// Client 返回命令客户端（consumer/all 角色）
func (s *Station) Client() pkgif.CommandClient {
	if rt := s.rt(); rt != nil && rt.Client != nil {
		return rt.Client
	}
	return nil
}

// Router 返回命令路由器（acquisition/all 角色）
func (s *Station) Router() pkgif.CommandRouter {
	if rt := s.rt(); rt != nil && rt.Router != nil {
		return rt.Router
	}
	return nil
}

// Registry 返回通道注册表
func (s *Station) Registry() *channel.Registry {
	if rt := s.rt(); rt != nil {
		return rt.Registry
	}
	return nil
}

// Acquisition 返回采集服务（acquisition/all 角色）
func (s *Station) Acquisition() pkgif.Acquisition {
	if rt := s.rt(); rt != nil && rt.Acquisition != nil {
		return rt.Acquisition
	}
	return nil
}

// Signals 返回信号配置存储（未启用持久化时为 nil）
func (s *Station) Signals() pkgif.SignalStore {
	if rt := s.rt(); rt != nil {
		return rt.Signals
	}
	return nil
}

// Register 把任意形状的操作注册为命令处理器（acquisition/all 角色）
//
// op 支持的形状见 registrar 包：func([ctx], [in]) ([out], [error]) 或返回 <-chan out。
func (s *Station) Register(route string, op any) error {
	rt := s.rt()
	if rt == nil {
		return ErrNotStarted
	}
	if rt.Router == nil || rt.Registrar == nil {
		return fmt.Errorf("register %q: role %s has no command router", route, s.config.Role)
	}
	return rt.Registrar.Register(rt.Router, route, op)
}
