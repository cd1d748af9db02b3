package acquisition

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// ============================================================================
//                              Publisher
// ============================================================================

// Publisher 把重放缓冲区的待发布采样批量写入数据通道
type Publisher struct {
	buffer   *ReplayBuffer[types.SampleItem]
	data     pkgif.Channel[types.SampleItem]
	interval time.Duration
	batch    int
	clock    clock.Clock
	errLog   *log.ThrottledLogger

	published atomic.Int64
	failed    atomic.Int64
}

// NewPublisher 创建发布器
func NewPublisher(buffer *ReplayBuffer[types.SampleItem], data pkgif.Channel[types.SampleItem], interval time.Duration, batch int, c clock.Clock) *Publisher {
	if batch < 1 {
		batch = 1
	}
	return &Publisher{
		buffer:   buffer,
		data:     data,
		interval: interval,
		batch:    batch,
		clock:    c,
		errLog:   log.Throttled(logger, time.Second, 1),
	}
}

// Run 每个 interval 发布一次，ctx 结束时最后发布一次剩余条目
func (p *Publisher) Run(ctx context.Context) error {
	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Flush()
			return nil
		case <-ticker.C:
			p.Flush()
		}
	}
}

// Flush 写出全部待发布条目，每批更新一次通道头部
func (p *Publisher) Flush() int {
	total := 0
	for {
		items := p.buffer.Drain(p.batch)
		if len(items) == 0 {
			return total
		}
		if err := p.data.WriteBatch(items); err != nil {
			p.failed.Add(int64(len(items)))
			p.errLog.Warn("写入数据通道失败", "count", len(items), "error", err)
			return total
		}
		total += len(items)
		p.published.Add(int64(len(items)))
		if len(items) < p.batch {
			return total
		}
	}
}

// Published 返回已写入通道的采样数
func (p *Publisher) Published() int64 { return p.published.Load() }

// Failed 返回写入失败而丢失的采样数
func (p *Publisher) Failed() int64 { return p.failed.Load() }

// ============================================================================
//                              HeartbeatPublisher
// ============================================================================

// HeartbeatPublisher 定期写入心跳
type HeartbeatPublisher struct {
	sourceID int64
	status   pkgif.Channel[types.HeartbeatItem]
	interval time.Duration
	state    func() types.HeartbeatState
	clock    clock.Clock
	errLog   *log.ThrottledLogger

	seq atomic.Int64
}

// NewHeartbeatPublisher 创建心跳发布器，state 在每次心跳时求值
func NewHeartbeatPublisher(sourceID int64, status pkgif.Channel[types.HeartbeatItem], interval time.Duration, state func() types.HeartbeatState, c clock.Clock) *HeartbeatPublisher {
	return &HeartbeatPublisher{
		sourceID: sourceID,
		status:   status,
		interval: interval,
		state:    state,
		clock:    c,
		errLog:   log.Throttled(logger, time.Second, 1),
	}
}

// Run 立即发送一次心跳，之后每个 interval 发送一次
func (h *HeartbeatPublisher) Run(ctx context.Context) error {
	h.Beat(h.state())

	ticker := h.clock.Ticker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Beat(h.state())
		}
	}
}

// Beat 写入一条心跳
func (h *HeartbeatPublisher) Beat(state types.HeartbeatState) {
	item := types.HeartbeatItem{
		SourceID:  h.sourceID,
		Sequence:  h.seq.Add(1),
		Timestamp: h.clock.Now().UnixNano(),
		State:     state,
	}
	if err := h.status.Write(item); err != nil {
		h.errLog.Warn("写入心跳失败", "error", err)
	}
}

// Sent 返回已发送的心跳数
func (h *HeartbeatPublisher) Sent() int64 { return h.seq.Load() }
