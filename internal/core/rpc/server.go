package rpc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("core/rpc")

// 服务端同时保持打开的响应通道数
const replyChannelCacheSize = 64

// Observer RPC 指标观察者
type Observer interface {
	// ObserveInflight 正在执行的请求数变化
	ObserveInflight(delta int)

	// ObserveCacheHit 重试请求命中响应缓存
	ObserveCacheHit()
}

type nopObserver struct{}

func (nopObserver) ObserveInflight(int) {}
func (nopObserver) ObserveCacheHit()    {}

// Option 服务端/客户端选项
type Option func(*options)

type options struct {
	clock    clock.Clock
	observer Observer
}

func applyOptions(opts []Option) options {
	o := options{clock: clock.New(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock 注入时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithObserver 注入指标观察者
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// ServerStats 服务端统计
type ServerStats struct {
	Received  int64
	Served    int64
	CacheHits int64
	Dropped   int64
	Inflight  int64
}

// Server 命令服务端
type Server struct {
	cfg      Config
	registry *channel.Registry
	router   pkgif.CommandRouter
	clock    clock.Clock
	observer Observer
	errLog   *log.ThrottledLogger

	sem   *semaphore.Weighted
	cache *lru.Cache[string, *types.CommandResponse]

	replyMu sync.Mutex
	replies *lru.Cache[string, *channel.Channel[Frame]]

	mu       sync.Mutex
	running  bool
	stopping bool
	commands *channel.Channel[Frame]
	cancel   context.CancelFunc
	done     chan struct{}
	handlers sync.WaitGroup

	// 正在执行的 request_id，重复到达的请求直接忽略
	pendingMu sync.Mutex
	pending   map[string]struct{}

	received  atomic.Int64
	served    atomic.Int64
	cacheHits atomic.Int64
	dropped   atomic.Int64
	inflight  atomic.Int64
}

// NewServer 创建服务端
func NewServer(cfg Config, registry *channel.Registry, router pkgif.CommandRouter, opts ...Option) (*Server, error) {
	o := applyOptions(opts)

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		router:   router,
		clock:    o.clock,
		observer: o.observer,
		errLog:   log.Throttled(logger, cfg.ErrorLogInterval, 1),
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		pending:  make(map[string]struct{}),
	}

	if cfg.ReplyCacheSize > 0 {
		cache, err := lru.New[string, *types.CommandResponse](cfg.ReplyCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create reply cache: %w", err)
		}
		s.cache = cache
	}

	replies, err := lru.NewWithEvict(replyChannelCacheSize, func(name string, ch *channel.Channel[Frame]) {
		if err := ch.Close(); err != nil {
			logger.Debug("关闭响应通道失败", "name", name, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create reply channel cache: %w", err)
	}
	s.replies = replies

	return s, nil
}

// Start 打开命令通道并启动轮询
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return ErrStopping
	}
	if s.running {
		return nil
	}

	commands, err := channel.GetOrCreate(s.registry, s.cfg.CommandChannel, s.cfg.CommandCapacity, FrameCodec{})
	if err != nil {
		logger.Error("命令服务启动失败", "channel", s.cfg.CommandChannel, "error", err)
		return fmt.Errorf("open command channel: %w", err)
	}
	s.commands = commands

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.run(ctx, s.done)

	logger.Info("命令服务已启动", "channel", s.cfg.CommandChannel, "maxConcurrent", s.cfg.MaxConcurrent)
	return nil
}

// Stop 停止轮询，取消正在执行的处理器并等待其写回响应
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.stopping {
		return nil
	}
	s.stopping = true
	s.cancel()

	// 循环真正退出之前保持 running，避免 Start 再启动第二个循环
	done := s.done
	select {
	case <-done:
		s.running = false
		s.stopping = false
	case <-ctx.Done():
		go s.finishStop(done)
		return fmt.Errorf("stop rpc server: %w: %w", types.ErrTimeout, ctx.Err())
	}

	handlersDone := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(handlersDone)
	}()
	select {
	case <-handlersDone:
	case <-ctx.Done():
		return fmt.Errorf("stop rpc server: %w: %w", types.ErrTimeout, ctx.Err())
	}

	s.replyMu.Lock()
	s.replies.Purge()
	s.replyMu.Unlock()
	logger.Info("命令服务已停止", "served", s.served.Load())
	return nil
}

// finishStop 超时返回后等待循环退出再清除运行标志
func (s *Server) finishStop(done chan struct{}) {
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.running = false
		s.stopping = false
	}
}

// Running 是否正在运行（停止中视为未运行）
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.stopping
}

// Stats 返回统计快照
func (s *Server) Stats() ServerStats {
	return ServerStats{
		Received:  s.received.Load(),
		Served:    s.served.Load(),
		CacheHits: s.cacheHits.Load(),
		Dropped:   s.dropped.Load(),
		Inflight:  s.inflight.Load(),
	}
}

// ============================================================================
//                              轮询与分发
// ============================================================================

func (s *Server) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		delay := s.cfg.PollInterval
		if err := s.pollOnce(ctx); err != nil {
			s.errLog.Warn("读取命令通道失败，退避后重试", "error", err, "backoff", s.cfg.ErrorBackoff)
			delay = s.cfg.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(delay):
		}
	}
}

func (s *Server) pollOnce(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: poll panic: %v", types.ErrInternal, p)
		}
	}()

	frames, err := s.commands.ReadBatch(s.cfg.CommandCapacity)
	if err != nil {
		return err
	}
	for i, f := range frames {
		if f.Kind != FrameRequest {
			logger.Debug("忽略非请求帧", "kind", f.Kind, "requestID", f.RequestID)
			continue
		}
		s.received.Add(1)
		if err := s.dispatch(ctx, f); err != nil {
			// 停止期间剩余请求不再执行
			n := int64(len(frames) - i)
			s.dropped.Add(n)
			logger.Warn("命令服务停止，丢弃未分发请求", "count", n)
			return nil
		}
	}
	return nil
}

// dispatch 在有界执行器上处理一个请求；只有 ctx 结束时返回错误
func (s *Server) dispatch(ctx context.Context, f Frame) error {
	if resp, ok := s.cached(f.RequestID); ok {
		s.cacheHits.Add(1)
		s.observer.ObserveCacheHit()
		logger.Debug("重试请求命中缓存", "route", f.Route, "requestID", f.RequestID)
		s.reply(f.ReplyTo, f.Route, resp)
		return nil
	}
	if !s.markPending(f.RequestID) {
		logger.Debug("重复请求正在处理，忽略", "route", f.Route, "requestID", f.RequestID)
		return nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.clearPending(f.RequestID)
		return err
	}

	s.handlers.Add(1)
	s.inflight.Add(1)
	s.observer.ObserveInflight(1)
	go func() {
		defer func() {
			s.inflight.Add(-1)
			s.observer.ObserveInflight(-1)
			s.sem.Release(1)
			s.handlers.Done()
		}()
		s.handle(ctx, f)
	}()
	return nil
}

func (s *Server) handle(ctx context.Context, f Frame) {
	hctx, cancel := context.WithTimeout(ctx, s.cfg.HandlerTimeout)
	defer cancel()

	resp := s.router.Route(hctx, f.Request())
	if len(resp.Payload) > MaxPayload {
		logger.Warn("响应负载超出帧容量", "route", f.Route, "size", len(resp.Payload))
		resp = types.NewErrorResponse(resp.RequestID, types.StatusSerializationError,
			fmt.Sprintf("response payload %d bytes exceeds %d", len(resp.Payload), MaxPayload))
	}

	// 超时结果不缓存，重试可以再次执行
	if s.cache != nil && f.RequestID != "" && resp.Status != types.StatusTimeout {
		s.cache.Add(f.RequestID, resp)
	}
	s.clearPending(f.RequestID)

	s.reply(f.ReplyTo, f.Route, resp)
	s.served.Add(1)
}

// reply 把响应写入请求方的响应通道；replyTo 为空表示不需要响应
func (s *Server) reply(replyTo, route string, resp *types.CommandResponse) {
	if replyTo == "" {
		return
	}
	ch, err := s.replyChannel(replyTo)
	if err != nil {
		s.errLog.Warn("打开响应通道失败", "replyTo", replyTo, "error", err)
		return
	}

	frame := ResponseFrame(route, resp)
	if s.cfg.LockTimeout > 0 {
		ok, err := ch.TryWrite(frame, s.cfg.LockTimeout)
		if err == nil && !ok {
			err = fmt.Errorf("%w: reply channel lock", types.ErrTimeout)
		}
		if err != nil {
			s.errLog.Warn("写入响应失败", "replyTo", replyTo, "requestID", resp.RequestID, "error", err)
		}
		return
	}
	if err := ch.Write(frame); err != nil {
		s.errLog.Warn("写入响应失败", "replyTo", replyTo, "requestID", resp.RequestID, "error", err)
	}
}

func (s *Server) replyChannel(name string) (*channel.Channel[Frame], error) {
	s.replyMu.Lock()
	defer s.replyMu.Unlock()

	if ch, ok := s.replies.Get(name); ok && !ch.Closed() {
		return ch, nil
	}
	ch, err := channel.Open(name, s.cfg.ReplyCapacity, FrameCodec{}, s.registry.Config())
	if err != nil {
		return nil, err
	}
	s.replies.Add(name, ch)
	return ch, nil
}

func (s *Server) cached(requestID string) (*types.CommandResponse, bool) {
	if s.cache == nil || requestID == "" {
		return nil, false
	}
	return s.cache.Get(requestID)
}

func (s *Server) markPending(requestID string) bool {
	if requestID == "" {
		return true
	}
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if _, ok := s.pending[requestID]; ok {
		return false
	}
	s.pending[requestID] = struct{}{}
	return true
}

func (s *Server) clearPending(requestID string) {
	if requestID == "" {
		return
	}
	s.pendingMu.Lock()
	delete(s.pending, requestID)
	s.pendingMu.Unlock()
}
