package acquisition

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("core/acquisition")

// Option 采集服务选项
type Option func(*Service)

// WithClock 注入时钟
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// Stats 采集统计
type Stats struct {
	Acquiring  bool
	Paused     bool
	Signals    int
	Produced   int64
	Faults     int64
	Published  int64
	Failed     int64
	Dropped    int64
	Pending    int
	Heartbeats int64
}

// group 一组协程及其取消函数
type group struct {
	cancel context.CancelFunc
	eg     *errgroup.Group
}

func (g *group) stop(ctx context.Context) error {
	g.cancel()
	done := make(chan error, 1)
	go func() { done <- g.eg.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", types.ErrTimeout, ctx.Err())
	}
}

// Service 采集服务
//
// 打开后心跳持续发送（未采样时为 Idle），Start/Stop 只控制采样器。
type Service struct {
	cfg        Config
	registry   *channel.Registry
	instrument pkgif.Instrument
	signals    []types.SignalConfig
	clock      clock.Clock

	buffer *ReplayBuffer[types.SampleItem]
	paused atomic.Bool

	mu        sync.Mutex
	closed    bool
	running   atomic.Bool
	stopping  atomic.Bool
	publisher *Publisher
	heartbeat *HeartbeatPublisher
	plumbing  *group
	samplers  []*Sampler
	sampling  *group

	// 已停止的采样器累计计数
	produced atomic.Int64
	faults   atomic.Int64
}

var _ pkgif.Acquisition = (*Service)(nil)

// NewService 创建采集服务
func NewService(cfg Config, registry *channel.Registry, inst pkgif.Instrument, signals []types.SignalConfig, opts ...Option) (*Service, error) {
	if len(signals) == 0 {
		return nil, ErrNoSignals
	}
	for _, sig := range signals {
		if err := sig.Validate(); err != nil {
			return nil, fmt.Errorf("acquisition: %w", err)
		}
	}

	s := &Service{
		cfg:        cfg,
		registry:   registry,
		instrument: inst,
		signals:    slices.Clone(signals),
		clock:      clock.New(),
		buffer:     NewReplayBuffer[types.SampleItem](cfg.ReplayDepth),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.instrument == nil {
		s.instrument = NewSimulatedInstrument(s.clock)
	}
	return s, nil
}

// Signals 返回采集的信号配置
func (s *Service) Signals() []types.SignalConfig {
	return slices.Clone(s.signals)
}

// Buffer 返回重放缓冲区
func (s *Service) Buffer() *ReplayBuffer[types.SampleItem] {
	return s.buffer
}

// Instrument 返回使用的仪器
func (s *Service) Instrument() pkgif.Instrument {
	return s.instrument
}

// ============================================================================
//                              生命周期
// ============================================================================

// Open 打开数据/心跳通道并启动发布器与心跳（幂等）
func (s *Service) Open(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *Service) openLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.plumbing != nil {
		return nil
	}

	data, err := channel.GetOrCreate(s.registry, s.cfg.DataChannel, s.cfg.DataCapacity, types.SampleCodec{})
	if err != nil {
		return fmt.Errorf("open data channel: %w", err)
	}
	status, err := channel.GetOrCreate(s.registry, s.cfg.StatusChannel, s.cfg.StatusCapacity, types.HeartbeatCodec{})
	if err != nil {
		return fmt.Errorf("open status channel: %w", err)
	}

	s.publisher = NewPublisher(s.buffer, data, s.cfg.PublishInterval, s.cfg.PublishBatch, s.clock)
	s.heartbeat = NewHeartbeatPublisher(s.cfg.SourceID, status, s.cfg.HeartbeatInterval, s.heartbeatState, s.clock)

	ctx, cancel := context.WithCancel(context.Background())
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.publisher.Run(gctx) })
	eg.Go(func() error { return s.heartbeat.Run(gctx) })
	s.plumbing = &group{cancel: cancel, eg: eg}

	logger.Info("采集通道已打开", "data", s.cfg.DataChannel, "status", s.cfg.StatusChannel)
	return nil
}

// Start 启动全部采样器；已在采样时清除暂停状态
func (s *Service) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		return err
	}
	s.paused.Store(false)
	if s.sampling != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	eg, gctx := errgroup.WithContext(ctx)
	s.samplers = make([]*Sampler, 0, len(s.signals))
	for _, sig := range s.signals {
		sm := NewSampler(sig, s.instrument, s.push, s.clock)
		sm.dedicated = s.cfg.DedicatedThreads
		sm.paused = &s.paused
		s.samplers = append(s.samplers, sm)
		eg.Go(func() error { return sm.Run(gctx) })
	}
	s.sampling = &group{cancel: cancel, eg: eg}
	s.running.Store(true)

	logger.Info("采集已启动", "signals", len(s.signals), "dedicatedThreads", s.cfg.DedicatedThreads)
	return nil
}

// Stop 停止全部采样器并等待其退出；心跳继续（Idle）
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopSamplingLocked(ctx)
}

func (s *Service) stopSamplingLocked(ctx context.Context) error {
	if s.sampling == nil {
		return nil
	}
	s.running.Store(false)
	err := s.sampling.stop(ctx)
	for _, sm := range s.samplers {
		s.produced.Add(sm.Produced())
		s.faults.Add(sm.Faults())
	}
	s.sampling = nil
	s.samplers = nil
	logger.Info("采集已停止")
	return err
}

// Close 停止采样，发布剩余采样，发送 Stopping 心跳后停止心跳
func (s *Service) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.stopping.Store(true)

	err := s.stopSamplingLocked(ctx)
	if s.plumbing != nil {
		s.heartbeat.Beat(types.HeartbeatStopping)
		if perr := s.plumbing.stop(ctx); perr != nil && err == nil {
			err = perr
		}
		s.plumbing = nil
	}
	return err
}

// Pause 暂停采样，采样器保持运行但跳过 tick
func (s *Service) Pause() {
	if !s.paused.Swap(true) {
		logger.Info("采集已暂停")
	}
}

// Resume 恢复采样
func (s *Service) Resume() {
	if s.paused.Swap(false) {
		logger.Info("采集已恢复")
	}
}

// Acquiring 采样器在运行且未暂停
func (s *Service) Acquiring() bool {
	return s.running.Load() && !s.paused.Load()
}

// Stats 返回统计快照
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Acquiring: s.running.Load() && !s.paused.Load(),
		Paused:    s.paused.Load(),
		Signals:   len(s.signals),
		Produced:  s.produced.Load(),
		Faults:    s.faults.Load(),
		Dropped:   s.buffer.Dropped(),
		Pending:   s.buffer.Len(),
	}
	for _, sm := range s.samplers {
		st.Produced += sm.Produced()
		st.Faults += sm.Faults()
	}
	if s.publisher != nil {
		st.Published = s.publisher.Published()
		st.Failed = s.publisher.Failed()
	}
	if s.heartbeat != nil {
		st.Heartbeats = s.heartbeat.Sent()
	}
	return st
}

func (s *Service) push(item types.SampleItem) {
	s.buffer.Push(item)
}

// heartbeatState 心跳协程调用，不能获取 s.mu（Close 持锁等待心跳协程退出）
func (s *Service) heartbeatState() types.HeartbeatState {
	switch {
	case s.stopping.Load():
		return types.HeartbeatStopping
	case s.running.Load() && !s.paused.Load():
		return types.HeartbeatAcquiring
	default:
		return types.HeartbeatIdle
	}
}
