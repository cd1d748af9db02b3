package receiver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/fanout"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("core/receiver")

// Observer 接收器指标观察者
type Observer interface {
	ObserveReceived(n int)
	ObserveLoss(n int64)
	ObservePollError()
	ObserveConnectivity(c pkgif.Connectivity)
}

type nopObserver struct{}

func (nopObserver) ObserveReceived(int)                    {}
func (nopObserver) ObserveLoss(int64)                      {}
func (nopObserver) ObservePollError()                      {}
func (nopObserver) ObserveConnectivity(pkgif.Connectivity) {}

// Option 接收器选项
type Option func(*Receiver)

// WithClock 注入时钟（测试使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(r *Receiver) { r.clock = c }
}

// WithObserver 注入指标观察者
func WithObserver(o Observer) Option {
	return func(r *Receiver) {
		if o != nil {
			r.observer = o
		}
	}
}

// Receiver 流接收器
type Receiver struct {
	cfg      Config
	registry *channel.Registry
	clock    clock.Clock
	observer Observer
	errLog   *log.ThrottledLogger

	// 生命周期
	mu     sync.Mutex
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	data   pkgif.Channel[types.SampleItem]
	status pkgif.Channel[types.HeartbeatItem]

	// 扇出
	samples *fanout.Hub[int64, types.SampleItem]
	conns   *fanout.Hub[struct{}, pkgif.ConnectivityEvent]

	// 末值缓存：轮询协程写，订阅者并发读
	lastValues sync.Map // int64 -> types.SampleItem
	tracked    atomic.Int64

	// 仅轮询协程访问
	lastSeq         map[int64]int64
	lastHeartbeatAt time.Time
	lastHeartbeat   types.HeartbeatItem

	connectivity atomic.Int32

	received   atomic.Int64
	lost       atomic.Int64
	pollErrors atomic.Int64
	heartbeats atomic.Int64
}

var _ pkgif.StreamReceiver = (*Receiver)(nil)

// New 创建接收器
func New(cfg Config, registry *channel.Registry, opts ...Option) *Receiver {
	r := &Receiver{
		cfg:      cfg,
		registry: registry,
		clock:    clock.New(),
		observer: nopObserver{},
		samples:  fanout.New[int64, types.SampleItem]("receiver/samples", cfg.SubscriberBuffer),
		conns:    fanout.New[struct{}, pkgif.ConnectivityEvent]("receiver/connectivity", 16),
		lastSeq:  make(map[int64]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.errLog = log.Throttled(logger, cfg.ErrorLogInterval, 1)
	r.state.Store(int32(pkgif.ReceiverStopped))
	r.connectivity.Store(int32(pkgif.Disconnected))
	return r
}

// ============================================================================
//                              生命周期
// ============================================================================

// State 返回当前状态
func (r *Receiver) State() pkgif.ReceiverState {
	return pkgif.ReceiverState(r.state.Load())
}

// Start 打开通道并启动轮询循环
//
// 已运行时为空操作。通道无法打开时返回错误并回到 Stopped。
func (r *Receiver) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State() != pkgif.ReceiverStopped {
		return nil
	}
	r.state.Store(int32(pkgif.ReceiverStarting))

	if err := r.openChannels(); err != nil {
		r.state.Store(int32(pkgif.ReceiverStopped))
		logger.Error("接收器启动失败", "error", err)
		return err
	}

	r.lastSeq = make(map[int64]int64)
	r.lastHeartbeatAt = time.Time{}

	// 轮询协程的生命周期与 Start 的 ctx 无关，只由 Stop 控制
	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(loopCtx, r.done)

	r.state.Store(int32(pkgif.ReceiverRunning))
	logger.Info("接收器已启动",
		"data", r.cfg.DataChannel,
		"status", r.cfg.StatusChannel,
		"pollInterval", r.cfg.PollInterval)
	return nil
}

func (r *Receiver) openChannels() error {
	data, err := channel.GetOrCreate(r.registry, r.cfg.DataChannel, r.cfg.DataCapacity, types.SampleCodec{})
	if err != nil {
		return fmt.Errorf("open data channel: %w", err)
	}
	status, err := channel.GetOrCreate(r.registry, r.cfg.StatusChannel, r.cfg.StatusCapacity, types.HeartbeatCodec{})
	if err != nil {
		return fmt.Errorf("open status channel: %w", err)
	}
	r.data = data
	r.status = status
	return nil
}

// Stop 请求取消并等待轮询循环退出
//
// 未运行时为空操作。ctx 先于循环退出时返回错误，循环退出后状态仍会变为 Stopped。
func (r *Receiver) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State() != pkgif.ReceiverRunning {
		return nil
	}
	r.state.Store(int32(pkgif.ReceiverStopping))
	r.cancel()

	done := r.done
	select {
	case <-done:
		r.state.Store(int32(pkgif.ReceiverStopped))
		logger.Info("接收器已停止")
		return nil
	case <-ctx.Done():
		go func() {
			<-done
			r.state.CompareAndSwap(int32(pkgif.ReceiverStopping), int32(pkgif.ReceiverStopped))
		}()
		return fmt.Errorf("stop receiver: %w: %w", types.ErrTimeout, ctx.Err())
	}
}

// Close 停止接收器并关闭全部订阅
func (r *Receiver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.Stop(ctx)
	r.samples.Close()
	r.conns.Close()
	return err
}

// ============================================================================
//                              轮询循环
// ============================================================================

func (r *Receiver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		delay := r.cfg.PollInterval
		if err := r.pollOnce(); err != nil {
			r.pollErrors.Add(1)
			r.observer.ObservePollError()
			r.errLog.Warn("轮询失败，退避后重试", "error", err, "backoff", r.cfg.ErrorBackoff)
			delay = r.cfg.ErrorBackoff
		}

		// 取消检查点：一次批量读取完成之后
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(delay):
		}
	}
}

// pollOnce 执行一次轮询，panic 被转换为错误
func (r *Receiver) pollOnce() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: poll panic: %v", types.ErrInternal, p)
		}
	}()

	// 数据通道读取失败不影响心跳与连通检查
	items, dataErr := r.data.ReadBatch(r.cfg.BatchSize)
	if dataErr == nil {
		r.handleSamples(items)
	}

	hbs, statusErr := r.status.ReadBatch(r.cfg.StatusCapacity)
	now := r.clock.Now()
	if statusErr == nil {
		r.handleHeartbeats(hbs, now)
	}
	r.checkConnectivity(now)
	return multierr.Append(dataErr, statusErr)
}

// sequenceGap 返回序号跳变计入的丢失数
//
// 跳变按序号距离计数：基线 2 之后收到 5 计 3，因此 [1,2,5,6] 的丢失数为 3。
// 连续或回退（生产者重启）返回 0。
func sequenceGap(last, seq int64) int64 {
	if seq <= last+1 {
		return 0
	}
	return seq - last
}

// handleSamples 丢失检测、更新末值缓存并扇出（按到达顺序）
func (r *Receiver) handleSamples(items []types.SampleItem) {
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		if last, ok := r.lastSeq[item.ChannelID]; ok {
			if gap := sequenceGap(last, item.Sequence); gap > 0 {
				r.lost.Add(gap)
				r.observer.ObserveLoss(gap)
			}
		}
		r.lastSeq[item.ChannelID] = item.Sequence

		if _, loaded := r.lastValues.Swap(item.ChannelID, item); !loaded {
			r.tracked.Add(1)
		}
		r.samples.Publish(item.ChannelID, item)
	}
	r.received.Add(int64(len(items)))
	r.observer.ObserveReceived(len(items))
}

// handleHeartbeats 记录心跳；任意心跳使连通状态转为 Connected
func (r *Receiver) handleHeartbeats(hbs []types.HeartbeatItem, now time.Time) {
	if len(hbs) == 0 {
		return
	}
	r.heartbeats.Add(int64(len(hbs)))
	r.lastHeartbeat = hbs[len(hbs)-1]
	r.lastHeartbeatAt = now
	r.setConnectivity(pkgif.Connected, now)
}

// checkConnectivity 超时未收到心跳则转为 Disconnected
func (r *Receiver) checkConnectivity(now time.Time) {
	if r.Connectivity() != pkgif.Connected {
		return
	}
	if now.Sub(r.lastHeartbeatAt) > r.cfg.HeartbeatTimeout {
		logger.Warn("心跳超时，生产者视为断开",
			"lastHeartbeat", r.lastHeartbeatAt,
			"timeout", r.cfg.HeartbeatTimeout)
		r.setConnectivity(pkgif.Disconnected, now)
	}
}

func (r *Receiver) setConnectivity(c pkgif.Connectivity, now time.Time) {
	prev := pkgif.Connectivity(r.connectivity.Swap(int32(c)))
	if prev == c {
		return
	}

	ev := pkgif.ConnectivityEvent{
		Previous:      prev,
		Current:       c,
		LastHeartbeat: r.lastHeartbeat,
		Timestamp:     now,
	}
	r.observer.ObserveConnectivity(c)
	logger.Info("连通状态变化", "from", prev, "to", c)

	// 非阻塞投递，慢回调只会丢事件，不会阻塞轮询
	r.conns.Broadcast(ev)
}

// ============================================================================
//                              订阅与查询
// ============================================================================

// Subscribe 订阅全部条目
func (r *Receiver) Subscribe() pkgif.Subscription[types.SampleItem] {
	return r.samples.Subscribe()
}

// SubscribeID 订阅指定 channel_id 的条目
func (r *Receiver) SubscribeID(channelID int64) pkgif.Subscription[types.SampleItem] {
	return r.samples.SubscribeKey(channelID)
}

// SubscribeConnectivity 订阅连通状态变化
func (r *Receiver) SubscribeConnectivity() pkgif.Subscription[pkgif.ConnectivityEvent] {
	return r.conns.Subscribe()
}

// OnConnectivityChange 注册连通状态变化回调
//
// 回调在独立协程中按顺序执行，接收器 Close 后退出。
func (r *Receiver) OnConnectivityChange(fn func(pkgif.ConnectivityEvent)) {
	if fn == nil {
		return
	}
	sub := r.conns.Subscribe()
	go func() {
		for ev := range sub.Out() {
			fn(ev)
		}
	}()
}

// LastValue 返回指定 channel_id 的最新条目
func (r *Receiver) LastValue(channelID int64) (types.SampleItem, bool) {
	v, ok := r.lastValues.Load(channelID)
	if !ok {
		return types.SampleItem{}, false
	}
	return v.(types.SampleItem), true
}

// LastValues 返回末值缓存快照
func (r *Receiver) LastValues() map[int64]types.SampleItem {
	out := make(map[int64]types.SampleItem, r.tracked.Load())
	r.lastValues.Range(func(k, v any) bool {
		out[k.(int64)] = v.(types.SampleItem)
		return true
	})
	return out
}

// LossCount 返回累计丢失条目数
func (r *Receiver) LossCount() int64 {
	return r.lost.Load()
}

// Connectivity 返回当前连通状态
func (r *Receiver) Connectivity() pkgif.Connectivity {
	return pkgif.Connectivity(r.connectivity.Load())
}

// Stats 返回统计快照
func (r *Receiver) Stats() pkgif.ReceiverStats {
	return pkgif.ReceiverStats{
		State:        r.State(),
		Connectivity: r.Connectivity(),
		Received:     r.received.Load(),
		Lost:         r.lost.Load(),
		PollErrors:   r.pollErrors.Load(),
		Heartbeats:   r.heartbeats.Load(),
		TrackedIDs:   int(r.tracked.Load()),
	}
}
