package acquisition

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// Sampler 单个信号的采样循环
//
// 序列号从 1 开始，每个 tick 恰好产生一个采样（暂停期间跳过，不消耗序列号）。
type Sampler struct {
	signal     types.SignalConfig
	instrument pkgif.Instrument
	sink       func(types.SampleItem)
	clock      clock.Clock
	dedicated  bool
	paused     *atomic.Bool

	// 仅采样协程访问
	seq int64

	produced atomic.Int64
	faults   atomic.Int64
}

// NewSampler 创建采样器，sink 接收每个采样
func NewSampler(sig types.SignalConfig, inst pkgif.Instrument, sink func(types.SampleItem), c clock.Clock) *Sampler {
	if c == nil {
		c = clock.New()
	}
	return &Sampler{
		signal:     sig,
		instrument: inst,
		sink:       sink,
		clock:      c,
		paused:     new(atomic.Bool),
	}
}

// Signal 返回信号配置
func (s *Sampler) Signal() types.SignalConfig { return s.signal }

// Period 返回采样周期
func (s *Sampler) Period() time.Duration {
	return periodOf(s.signal.SampleRateHz)
}

func periodOf(hz float64) time.Duration {
	if hz <= 0 {
		return time.Second
	}
	p := time.Duration(float64(time.Second) / hz)
	if p < time.Microsecond {
		p = time.Microsecond
	}
	return p
}

// Produced 返回已产生的采样数
func (s *Sampler) Produced() int64 { return s.produced.Load() }

// Faults 返回读取失败次数
func (s *Sampler) Faults() int64 { return s.faults.Load() }

// Run 运行采样循环直到 ctx 结束；仪器故障不会使循环退出
func (s *Sampler) Run(ctx context.Context) error {
	if s.dedicated {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := raiseThreadPriority(); err != nil {
			logger.Debug("无法提升采样线程优先级", "signal", s.signal.Name, "error", err)
		}
	}

	ticker := s.clock.Ticker(s.Period())
	defer ticker.Stop()

	logger.Debug("采样器已启动", "signal", s.signal.Name, "period", s.Period())
	for {
		select {
		case <-ctx.Done():
			logger.Debug("采样器已停止", "signal", s.signal.Name, "produced", s.produced.Load())
			return nil
		case <-ticker.C:
			if s.paused.Load() {
				continue
			}
			s.sink(s.sample(ctx))
		}
	}
}

// sample 读取一次并构造采样项
func (s *Sampler) sample(ctx context.Context) types.SampleItem {
	s.seq++
	item := types.SampleItem{
		ChannelID: s.signal.ID,
		Sequence:  s.seq,
		Timestamp: s.clock.Now().UnixNano(),
	}

	value, err := s.read(ctx)
	switch {
	case err != nil || math.IsNaN(value) || math.IsInf(value, 0):
		s.faults.Add(1)
		if err != nil {
			logger.Debug("仪器读取失败", "signal", s.signal.Name, "seq", s.seq, "error", err)
		}
		item.Value = math.NaN()
		item.Quality = types.QualityBad
	case !s.signal.InRange(value):
		item.Value = value
		item.Quality = types.QualityUncertain
	default:
		item.Value = value
		item.Quality = types.QualityGood
	}

	s.produced.Add(1)
	return item
}

// read 调用仪器，panic 视为读取失败
func (s *Sampler) read(ctx context.Context) (v float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: instrument panic: %v", types.ErrInternal, p)
		}
	}()
	return s.instrument.Read(ctx, s.signal)
}
