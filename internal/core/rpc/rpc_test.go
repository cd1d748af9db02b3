//go:build unix

package rpc

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/registrar"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/shm"
	"github.com/dep2p/go-stationbus/pkg/types"
)

func testConfig() Config {
	return Config{
		CommandChannel:   "TestCommand",
		CommandCapacity:  32,
		ReplyPrefix:      "TestReply.",
		ReplyCapacity:    32,
		PollInterval:     time.Millisecond,
		HandlerTimeout:   time.Second,
		CallTimeout:      2 * time.Second,
		LockTimeout:      100 * time.Millisecond,
		ErrorBackoff:     5 * time.Millisecond,
		ErrorLogInterval: time.Second,
		MaxConcurrent:    4,
		ReplyCacheSize:   16,
	}
}

type pair struct {
	server *Server
	client *Client
	router *router.Router
	reg    *channel.Registry
}

// newPair 在同一临时目录上创建服务端与客户端（各自独立的注册表，模拟两个进程）
func newPair(t *testing.T, cfg Config) *pair {
	t.Helper()
	dir := t.TempDir()

	serverReg := channel.NewRegistry(channel.Config{Dir: dir})
	clientReg := channel.NewRegistry(channel.Config{Dir: dir})

	r := router.New()
	s, err := NewServer(cfg, serverReg, r)
	require.NoError(t, err)
	c := NewClient(cfg, clientReg, registrar.JSONSerializer{})

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, c.Start(ctx))

	t.Cleanup(func() {
		c.Close()
		s.Stop(context.Background())
		clientReg.Close()
		serverReg.Close()
	})
	return &pair{server: s, client: c, router: r, reg: clientReg}
}

type valveRequest struct {
	Valve int `json:"valve"`
}

type valveState struct {
	Valve int  `json:"valve"`
	Open  bool `json:"open"`
}

func TestRPC_Invoke(t *testing.T) {
	p := newPair(t, testConfig())
	require.NoError(t, registrar.New(nil).Register(p.router, "valve/open", func(req valveRequest) valveState {
		return valveState{Valve: req.Valve, Open: true}
	}))

	var out valveState
	err := p.client.Invoke(context.Background(), "valve/open", valveRequest{Valve: 3}, &out)
	require.NoError(t, err)
	assert.Equal(t, valveState{Valve: 3, Open: true}, out)
}

// TestRPC_InvokeProtoZeroValue protobuf 零值消息以空负载往返
func TestRPC_InvokeProtoZeroValue(t *testing.T) {
	p := newPair(t, testConfig())
	require.NoError(t, registrar.New(registrar.ProtoSerializer{}).Register(p.router, "valve/open",
		func(id *wrapperspb.Int64Value) *wrapperspb.BoolValue {
			return wrapperspb.Bool(id.GetValue() != 0)
		}))

	c := NewClient(testConfig(), p.reg, registrar.ProtoSerializer{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	out := wrapperspb.Bool(true)
	require.NoError(t, c.Invoke(context.Background(), "valve/open", wrapperspb.Int64(0), out))
	assert.False(t, out.GetValue(), "空响应解码为零值消息")

	require.NoError(t, c.Invoke(context.Background(), "valve/open", wrapperspb.Int64(7), out))
	assert.True(t, out.GetValue())
}

func TestRPC_CallStatuses(t *testing.T) {
	p := newPair(t, testConfig())
	ctx := context.Background()

	resp, err := p.client.Call(ctx, "missing/route", nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusHandlerNotFound, resp.Status)
	assert.NotEmpty(t, resp.RequestID)

	require.NoError(t, registrar.New(nil).Register(p.router, "valve/open", func(req valveRequest) error { return nil }))
	resp, err = p.client.Call(ctx, "valve/open", nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInvalidRequest, resp.Status)

	err = p.client.Invoke(ctx, "missing/route", nil, nil)
	assert.ErrorIs(t, err, types.ErrHandlerNotFound)
}

func TestRPC_PayloadTooLarge(t *testing.T) {
	p := newPair(t, testConfig())

	_, err := p.client.Call(context.Background(), "x", make([]byte, MaxPayload+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

// TestRPC_ResponseTooLarge 超出帧容量的响应转为 SerializationError
func TestRPC_ResponseTooLarge(t *testing.T) {
	p := newPair(t, testConfig())
	p.router.MustRegister("dump", func(context.Context, *types.CommandRequest) (*types.CommandResponse, error) {
		return &types.CommandResponse{Status: types.StatusSuccess, Payload: make([]byte, MaxPayload+1)}, nil
	})

	resp, err := p.client.Call(context.Background(), "dump", nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSerializationError, resp.Status)
}

// TestRPC_RetryServedFromCache 相同 request_id 的重试不会再次执行处理器
func TestRPC_RetryServedFromCache(t *testing.T) {
	p := newPair(t, testConfig())

	var calls atomic.Int32
	p.router.MustRegister("station/start", func(context.Context, *types.CommandRequest) (*types.CommandResponse, error) {
		calls.Add(1)
		return nil, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		resp, err := p.client.Do(ctx, &types.CommandRequest{RequestID: "fixed-id", Route: "station/start"})
		require.NoError(t, err)
		assert.True(t, resp.IsSuccess())
		assert.Equal(t, "fixed-id", resp.RequestID)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(2), p.server.Stats().CacheHits)
}

func TestRPC_ClientTimeout(t *testing.T) {
	p := newPair(t, testConfig())
	release := make(chan struct{})
	defer close(release)

	p.router.MustRegister("slow", func(context.Context, *types.CommandRequest) (*types.CommandResponse, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := p.client.Call(ctx, "slow", nil)
	assert.ErrorIs(t, err, types.ErrTimeout)
}

// TestRPC_HandlerTimeout 服务端处理超时返回 Timeout 响应
func TestRPC_HandlerTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.HandlerTimeout = 20 * time.Millisecond
	p := newPair(t, cfg)

	p.router.MustRegister("stuck", func(ctx context.Context, _ *types.CommandRequest) (*types.CommandResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	resp, err := p.client.Call(context.Background(), "stuck", nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusTimeout, resp.Status)
}

// TestRPC_BoundedConcurrency 同时执行的处理器不超过 MaxConcurrent
func TestRPC_BoundedConcurrency(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrent = 2
	p := newPair(t, cfg)

	var current, peak atomic.Int32
	p.router.MustRegister("work", func(context.Context, *types.CommandRequest) (*types.CommandResponse, error) {
		n := current.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return nil, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := p.client.Call(context.Background(), "work", nil)
			assert.NoError(t, err)
			assert.True(t, resp.IsSuccess())
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int64(8), p.server.Stats().Served)
}

func TestClient_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	reg := channel.NewRegistry(channel.Config{Dir: dir})
	defer reg.Close()

	c := NewClient(testConfig(), reg, registrar.JSONSerializer{})
	_, err := c.Call(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))
	assert.FileExists(t, dir+"/"+"TestReply."+c.ID()+".shm")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.NoFileExists(t, dir+"/"+"TestReply."+c.ID()+".shm")

	_, err = c.Call(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Start(context.Background()), ErrClientClosed)
}

// TestClient_CloseFailsPending 关闭客户端使等待中的调用立即失败
func TestClient_CloseFailsPending(t *testing.T) {
	dir := t.TempDir()
	reg := channel.NewRegistry(channel.Config{Dir: dir})
	defer reg.Close()

	c := NewClient(testConfig(), reg, registrar.JSONSerializer{})
	require.NoError(t, c.Start(context.Background()))

	errc := make(chan error, 1)
	go func() {
		_, err := c.Call(context.Background(), "nobody/listens", nil)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClientClosed)
	case <-time.After(time.Second):
		t.Fatal("pending call not released")
	}
}

func TestServer_StopIdempotent(t *testing.T) {
	reg := channel.NewRegistry(channel.Config{Dir: t.TempDir()})
	defer reg.Close()

	s, err := NewServer(testConfig(), reg, router.New())
	require.NoError(t, err)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.Running())
}

// TestServer_StopTimeoutBlocksRestart Stop 超时后循环退出前不能再次启动
func TestServer_StopTimeoutBlocksRestart(t *testing.T) {
	dir := t.TempDir()
	reg := channel.NewRegistry(channel.Config{Dir: dir})
	defer reg.Close()

	cfg := testConfig()
	s, err := NewServer(cfg, reg, router.New())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	// 另一个句柄持有命令通道的锁，轮询循环阻塞在读取上
	hold, err := shm.Open(cfg.CommandChannel, shm.Options{
		Dir:         dir,
		ItemSize:    FrameCodec{}.Size(),
		Capacity:    cfg.CommandCapacity,
		OpenTimeout: time.Second,
	})
	require.NoError(t, err)
	defer hold.Close()
	require.NoError(t, hold.Lock(context.Background()))
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), types.ErrTimeout)
	assert.False(t, s.Running())
	assert.ErrorIs(t, s.Start(context.Background()), ErrStopping)

	hold.Unlock()
	require.Eventually(t, func() bool {
		return s.Start(context.Background()) == nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.Running())
	require.NoError(t, s.Stop(context.Background()))
}
