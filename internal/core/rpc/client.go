package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// Client 命令客户端
//
// 每个客户端拥有独立的响应通道，后台循环按 request_id 把响应交给等待中的调用。
type Client struct {
	cfg        Config
	registry   *channel.Registry
	serializer pkgif.Serializer
	clock      clock.Clock
	errLog     *log.ThrottledLogger
	id         string

	mu       sync.Mutex
	running  bool
	closed   bool
	commands *channel.Channel[Frame]
	replies  *channel.Channel[Frame]
	cancel   context.CancelFunc
	done     chan struct{}

	pendingMu sync.Mutex
	pending   map[string]chan *types.CommandResponse
}

var _ pkgif.CommandClient = (*Client)(nil)

// NewClient 创建客户端，serializer 用于 Invoke
func NewClient(cfg Config, registry *channel.Registry, serializer pkgif.Serializer, opts ...Option) *Client {
	o := applyOptions(opts)
	return &Client{
		cfg:        cfg,
		registry:   registry,
		serializer: serializer,
		clock:      o.clock,
		errLog:     log.Throttled(logger, cfg.ErrorLogInterval, 1),
		id:         uuid.NewString(),
		pending:    make(map[string]chan *types.CommandResponse),
	}
}

// ID 返回客户端 ID
func (c *Client) ID() string { return c.id }

// ReplyChannel 返回响应通道名
func (c *Client) ReplyChannel() string { return c.cfg.replyName(c.id) }

// Start 打开命令通道与自己的响应通道并启动响应循环
func (c *Client) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.running {
		return nil
	}

	commands, err := channel.GetOrCreate(c.registry, c.cfg.CommandChannel, c.cfg.CommandCapacity, FrameCodec{})
	if err != nil {
		return fmt.Errorf("open command channel: %w", err)
	}
	replies, err := channel.Open(c.ReplyChannel(), c.cfg.ReplyCapacity, FrameCodec{}, c.registry.Config())
	if err != nil {
		return fmt.Errorf("open reply channel: %w", err)
	}
	// 同名段可能是上一次运行残留的
	if err := replies.Clear(); err != nil {
		_ = replies.Close()
		return fmt.Errorf("reset reply channel: %w", err)
	}

	c.commands = commands
	c.replies = replies

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true
	go c.run(ctx, c.done)

	logger.Info("命令客户端已启动", "clientID", c.id, "reply", c.ReplyChannel())
	return nil
}

// Close 停止响应循环，使等待中的调用失败并删除响应通道
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if !c.running {
		return nil
	}
	c.running = false
	c.cancel()
	<-c.done

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	err := multierr.Combine(c.replies.Close(), c.replies.Unlink())
	logger.Info("命令客户端已关闭", "clientID", c.id)
	return err
}

// ============================================================================
//                              调用
// ============================================================================

// Call 发送原始负载并等待响应
//
// ctx 没有截止时间时使用 CallTimeout。超时返回包装了 types.ErrTimeout 的错误。
func (c *Client) Call(ctx context.Context, route string, payload []byte) (*types.CommandResponse, error) {
	return c.Do(ctx, &types.CommandRequest{
		RequestID: uuid.NewString(),
		Route:     route,
		Payload:   payload,
	})
}

// Do 发送完整请求并等待响应
//
// 使用相同 RequestID 重发的请求由服务端缓存应答，处理器不会被再次调用。
func (c *Client) Do(ctx context.Context, req *types.CommandRequest) (*types.CommandResponse, error) {
	if req == nil || req.Route == "" {
		return nil, fmt.Errorf("%w: empty route", types.ErrInvalidRequest)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	frame := RequestFrame(req, c.ReplyChannel())
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	commands, err := c.activeCommands()
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}

	wait := c.addPending(req.RequestID)
	defer c.removePending(req.RequestID)

	if err := commands.Write(frame); err != nil {
		return nil, fmt.Errorf("send %q: %w", req.Route, err)
	}

	select {
	case resp, ok := <-wait:
		if !ok {
			return nil, ErrClientClosed
		}
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("call %q: %w: %w", req.Route, types.ErrTimeout, ctx.Err())
	}
}

// Invoke 编码 in、调用路由并把结果解码到 out
//
// in 为 nil 时不发送负载，out 为 nil 时忽略结果负载。非成功响应转换为对应的错误分类。
func (c *Client) Invoke(ctx context.Context, route string, in, out any) error {
	var payload []byte
	if in != nil {
		data, err := c.serializer.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %q request: %w", route, err)
		}
		payload = data
	}

	resp, err := c.Call(ctx, route, payload)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return resp.Err()
	}
	if out == nil {
		return nil
	}
	if len(resp.Payload) == 0 && !registrar.AcceptsEmpty(c.serializer) {
		return nil
	}
	if err := c.serializer.Unmarshal(resp.Payload, out); err != nil {
		return fmt.Errorf("decode %q response: %w", route, err)
	}
	return nil
}

func (c *Client) activeCommands() (*channel.Channel[Frame], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if !c.running {
		return nil, ErrNotRunning
	}
	return c.commands, nil
}

func (c *Client) addPending(id string) chan *types.CommandResponse {
	ch := make(chan *types.CommandResponse, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	return ch
}

func (c *Client) removePending(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// ============================================================================
//                              响应循环
// ============================================================================

func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		delay := c.cfg.PollInterval
		if err := c.pollOnce(); err != nil {
			c.errLog.Warn("读取响应通道失败，退避后重试", "error", err)
			delay = c.cfg.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(delay):
		}
	}
}

func (c *Client) pollOnce() error {
	frames, err := c.replies.ReadBatch(c.cfg.ReplyCapacity)
	if err != nil {
		if errors.Is(err, types.ErrChannelClosed) {
			return nil
		}
		return err
	}
	for _, f := range frames {
		if f.Kind != FrameResponse {
			continue
		}
		c.deliver(f.Response())
	}
	return nil
}

func (c *Client) deliver(resp *types.CommandResponse) {
	c.pendingMu.Lock()
	ch, ok := c.pending[resp.RequestID]
	if ok {
		delete(c.pending, resp.RequestID)
	}
	c.pendingMu.Unlock()

	if !ok {
		logger.Debug("响应没有等待者（调用已超时）", "requestID", resp.RequestID)
		return
	}
	ch <- resp
}
