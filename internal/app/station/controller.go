package station

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-stationbus/internal/core/acquisition"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("app/station")

// statsSource 可选的采集统计来源
type statsSource interface {
	Stats() acquisition.Stats
}

// Config 控制器配置
type Config struct {
	Valves      int
	InitialMode ControlMode
	Clock       clock.Clock
}

// Controller 站点控制器
type Controller struct {
	acq   pkgif.Acquisition
	store pkgif.SignalStore
	clock clock.Clock
	start int64

	mu         sync.Mutex
	mode       ControlMode
	heldPaused bool
	valves     []ValveState
}

// NewController 创建控制器；store 为 nil 时 signals/list 返回采集服务的信号
func NewController(cfg Config, acq pkgif.Acquisition, store pkgif.SignalStore) (*Controller, error) {
	if acq == nil {
		return nil, errors.New("station: acquisition is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	c := &Controller{
		acq:    acq,
		store:  store,
		clock:  cfg.Clock,
		start:  cfg.Clock.Now().UnixMilli(),
		mode:   cfg.InitialMode,
		valves: make([]ValveState, cfg.Valves),
	}
	for i := range c.valves {
		c.valves[i] = ValveState{ID: i + 1, Changed: c.start}
	}
	return c, nil
}

// ============================================================================
//                              采集控制
// ============================================================================

// Start 开始采集
func (c *Controller) Start(ctx context.Context) (Status, error) {
	// 检查与启动在同一临界区内，模式切换不能插入其间
	c.mu.Lock()
	if c.mode == Hold {
		c.mu.Unlock()
		return Status{}, ErrHeld
	}
	err := c.acq.Start(ctx)
	c.mu.Unlock()
	if err != nil {
		return Status{}, fmt.Errorf("start acquisition: %w", err)
	}
	logger.Info("站点开始采集")
	return c.Status(ctx)
}

// Stop 停止采集
func (c *Controller) Stop(ctx context.Context) (Status, error) {
	if err := c.acq.Stop(ctx); err != nil {
		return Status{}, fmt.Errorf("stop acquisition: %w", err)
	}

	c.mu.Lock()
	c.heldPaused = false
	c.mu.Unlock()

	logger.Info("站点停止采集")
	return c.Status(ctx)
}

// Status 返回站点状态
func (c *Controller) Status(_ context.Context) (Status, error) {
	st := Status{
		Acquiring: c.acq.Acquiring(),
		Signals:   len(c.acq.Signals()),
	}
	if src, ok := c.acq.(statsSource); ok {
		s := src.Stats()
		st.Produced = s.Produced
		st.Published = s.Published
		st.Dropped = s.Dropped
	}

	c.mu.Lock()
	st.Mode = c.mode.String()
	st.Valves = append([]ValveState(nil), c.valves...)
	c.mu.Unlock()
	return st, nil
}

// ============================================================================
//                              阀门
// ============================================================================

// OpenValve 打开阀门
func (c *Controller) OpenValve(_ context.Context, req ValveRequest) (ValveState, error) {
	return c.setValve(req.ID, true)
}

// CloseValve 关闭阀门
func (c *Controller) CloseValve(_ context.Context, req ValveRequest) (ValveState, error) {
	return c.setValve(req.ID, false)
}

// ValveState 查询阀门状态
func (c *Controller) ValveState(_ context.Context, req ValveRequest) (ValveState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.valveLocked(req.ID)
	if err != nil {
		return ValveState{}, err
	}
	return *v, nil
}

func (c *Controller) setValve(id int, open bool) (ValveState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.valveLocked(id)
	if err != nil {
		return ValveState{}, err
	}
	if c.mode != Manual {
		return ValveState{}, fmt.Errorf("%w (mode %s)", ErrNotManual, c.mode)
	}
	if v.Open != open {
		v.Open = open
		v.Changed = c.clock.Now().UnixMilli()
		logger.Info("阀门状态变化", "valve", id, "open", open)
	}
	return *v, nil
}

func (c *Controller) valveLocked(id int) (*ValveState, error) {
	if id < 1 || id > len(c.valves) {
		return nil, fmt.Errorf("%w %d", ErrUnknownValve, id)
	}
	return &c.valves[id-1], nil
}

// ============================================================================
//                              控制模式
// ============================================================================

// SetMode 切换控制模式
//
// 进入 Hold 时若正在采集则暂停，离开 Hold 时恢复由 Hold 暂停的采集。
func (c *Controller) SetMode(_ context.Context, req ModeRequest) (ModeReply, error) {
	mode, err := ParseControlMode(req.Mode)
	if err != nil {
		return ModeReply{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.mode
	if prev == mode {
		return ModeReply{Mode: mode.String(), Previous: prev.String()}, nil
	}

	switch {
	case mode == Hold && c.acq.Acquiring():
		c.acq.Pause()
		c.heldPaused = true
	case prev == Hold && c.heldPaused:
		c.acq.Resume()
		c.heldPaused = false
	}
	c.mode = mode

	logger.Info("控制模式切换", "from", prev.String(), "to", mode.String())
	return ModeReply{Mode: mode.String(), Previous: prev.String()}, nil
}

// GetMode 返回当前控制模式
func (c *Controller) GetMode(_ context.Context) (ModeReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ModeReply{Mode: c.mode.String()}, nil
}

// Mode 返回当前控制模式
func (c *Controller) Mode() ControlMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ============================================================================
//                              信号与诊断
// ============================================================================

// ListSignals 列出信号配置
func (c *Controller) ListSignals(_ context.Context) ([]types.SignalConfig, error) {
	if c.store == nil {
		return c.acq.Signals(), nil
	}
	signals, err := c.store.List()
	if err != nil {
		return nil, err
	}
	if len(signals) == 0 {
		return c.acq.Signals(), nil
	}
	return signals, nil
}

// Ping 诊断回显
func (c *Controller) Ping(_ context.Context, req PingRequest) PingReply {
	now := c.clock.Now().UnixMilli()
	return PingReply{
		Nonce:    req.Nonce,
		Time:     now,
		UptimeMs: now - c.start,
	}
}
