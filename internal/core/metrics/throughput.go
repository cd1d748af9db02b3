package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// ThroughputCounter 按通道统计吞吐
type ThroughputCounter struct {
	clock clock.Clock

	mu       sync.RWMutex
	channels map[string]*channelMeter
}

type channelMeter struct {
	in          *RateMeter
	out         *RateMeter
	overwritten atomic.Int64
}

// NewThroughputCounter 创建吞吐计数器
func NewThroughputCounter(c clock.Clock) *ThroughputCounter {
	if c == nil {
		c = clock.New()
	}
	return &ThroughputCounter{
		clock:    c,
		channels: make(map[string]*channelMeter),
	}
}

func (t *ThroughputCounter) meter(name string) *channelMeter {
	t.mu.RLock()
	m, ok := t.channels[name]
	t.mu.RUnlock()
	if ok {
		return m
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok = t.channels[name]; ok {
		return m
	}
	m = &channelMeter{in: NewRateMeter(t.clock), out: NewRateMeter(t.clock)}
	t.channels[name] = m
	return m
}

// LogWrite 记录写入
func (t *ThroughputCounter) LogWrite(channel string, n, overwritten int) {
	m := t.meter(channel)
	m.in.Add(int64(n))
	if overwritten > 0 {
		m.overwritten.Add(int64(overwritten))
	}
}

// LogRead 记录读出
func (t *ThroughputCounter) LogRead(channel string, n int) {
	t.meter(channel).out.Add(int64(n))
}

// ForChannel 返回单个通道的吞吐快照
func (t *ThroughputCounter) ForChannel(channel string) Stats {
	t.mu.RLock()
	m, ok := t.channels[channel]
	t.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return m.stats()
}

// ByChannel 返回所有通道的吞吐快照
func (t *ThroughputCounter) ByChannel() map[string]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Stats, len(t.channels))
	for name, m := range t.channels {
		out[name] = m.stats()
	}
	return out
}

// TrimIdle 清理 since 之后没有任何活动的通道
func (t *ThroughputCounter) TrimIdle(since time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	trimmed := 0
	for name, m := range t.channels {
		if m.in.LastUpdate().Before(since) && m.out.LastUpdate().Before(since) {
			delete(t.channels, name)
			trimmed++
		}
	}
	return trimmed
}

// Reset 清空所有统计
func (t *ThroughputCounter) Reset() {
	t.mu.Lock()
	t.channels = make(map[string]*channelMeter)
	t.mu.Unlock()
}

func (m *channelMeter) stats() Stats {
	return Stats{
		ItemsIn:     m.in.Total(),
		ItemsOut:    m.out.Total(),
		Overwritten: m.overwritten.Load(),
		RateIn:      m.in.Rate(),
		RateOut:     m.out.Rate(),
	}
}
