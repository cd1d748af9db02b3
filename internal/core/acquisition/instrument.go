package acquisition

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// SimulatedInstrument 模拟仪器
//
// 每个信号输出量程中点附近的正弦波，周期与相位由信号 ID 决定。
// 可以按信号注入故障，用于演示与测试 Bad 质量采样。
type SimulatedInstrument struct {
	clock clock.Clock
	start time.Time

	mu     sync.RWMutex
	faults map[int64]error
}

var _ pkgif.Instrument = (*SimulatedInstrument)(nil)

// NewSimulatedInstrument 创建模拟仪器
func NewSimulatedInstrument(c clock.Clock) *SimulatedInstrument {
	if c == nil {
		c = clock.New()
	}
	return &SimulatedInstrument{
		clock:  c,
		start:  c.Now(),
		faults: make(map[int64]error),
	}
}

// Read 读取信号当前值
func (s *SimulatedInstrument) Read(ctx context.Context, sig types.SignalConfig) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	fault := s.faults[sig.ID]
	s.mu.RUnlock()
	if fault != nil {
		return math.NaN(), fault
	}

	t := s.clock.Since(s.start).Seconds()
	period := float64(1 + sig.ID%5)
	wave := math.Sin(2*math.Pi*t/period + float64(sig.ID))

	if sig.Max <= sig.Min {
		return wave, nil
	}
	mid := (sig.Min + sig.Max) / 2
	amp := (sig.Max - sig.Min) / 2 * 0.8
	return mid + amp*wave, nil
}

// InjectFault 让指定信号的后续读取返回 err（nil 使用 ErrSimulatedFault）
func (s *SimulatedInstrument) InjectFault(id int64, err error) {
	if err == nil {
		err = ErrSimulatedFault
	}
	s.mu.Lock()
	s.faults[id] = err
	s.mu.Unlock()
}

// ClearFault 清除指定信号的故障
func (s *SimulatedInstrument) ClearFault(id int64) {
	s.mu.Lock()
	delete(s.faults, id)
	s.mu.Unlock()
}
