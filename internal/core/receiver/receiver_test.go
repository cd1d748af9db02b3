//go:build unix

package receiver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/internal/core/channel"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

func testConfig() Config {
	return Config{
		DataChannel:      "TestData",
		DataCapacity:     64,
		StatusChannel:    "TestStatus",
		StatusCapacity:   8,
		PollInterval:     time.Millisecond,
		BatchSize:        16,
		HeartbeatTimeout: time.Second,
		ErrorBackoff:     5 * time.Millisecond,
		SubscriberBuffer: 64,
		ErrorLogInterval: time.Second,
	}
}

func newTestReceiver(t *testing.T, opts ...Option) (*Receiver, *channel.Registry) {
	t.Helper()
	reg := channel.NewRegistry(channel.Config{Dir: t.TempDir()})
	r := New(testConfig(), reg, opts...)
	t.Cleanup(func() {
		r.Close()
		reg.Close()
	})
	return r, reg
}

func sample(id, seq int64) types.SampleItem {
	return types.SampleItem{ChannelID: id, Sequence: seq, Timestamp: seq * 1000, Value: float64(seq)}
}

// TestReceiver_LossDetection 序列 [1,2,5,6] 丢失数为 3
func TestReceiver_LossDetection(t *testing.T) {
	r, _ := newTestReceiver(t)

	r.handleSamples([]types.SampleItem{sample(1, 1), sample(1, 2), sample(1, 5), sample(1, 6)})
	assert.Equal(t, int64(3), r.LossCount())

	// 其他 channel_id 独立计数，首条只建立基线
	r.handleSamples([]types.SampleItem{sample(2, 100), sample(2, 101)})
	assert.Equal(t, int64(3), r.LossCount())
}

// TestReceiver_LossBaselineReset 序列回退视为生产者重启
func TestReceiver_LossBaselineReset(t *testing.T) {
	r, _ := newTestReceiver(t)

	r.handleSamples([]types.SampleItem{sample(1, 50), sample(1, 51), sample(1, 1), sample(1, 2), sample(1, 4)})
	assert.Equal(t, int64(2), r.LossCount())
}

func TestSequenceGap(t *testing.T) {
	cases := []struct {
		last, seq, want int64
	}{
		{1, 2, 0},
		{2, 5, 3},
		{2, 4, 2},
		{5, 6, 0},
		{10, 3, 0},
		{7, 7, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, sequenceGap(c.last, c.seq), "last=%d seq=%d", c.last, c.seq)
	}
}

// TestReceiver_LastValue 末值缓存同步更新
func TestReceiver_LastValue(t *testing.T) {
	r, _ := newTestReceiver(t)

	_, ok := r.LastValue(1)
	assert.False(t, ok)

	r.handleSamples([]types.SampleItem{sample(1, 1), sample(2, 1), sample(1, 2)})

	v, ok := r.LastValue(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Sequence)

	all := r.LastValues()
	assert.Len(t, all, 2)
	assert.Equal(t, 2, r.Stats().TrackedIDs)
	assert.Equal(t, int64(3), r.Stats().Received)
}

// TestReceiver_Connectivity 心跳驱动连通状态（模拟时钟）
func TestReceiver_Connectivity(t *testing.T) {
	mock := clock.NewMock()
	r, _ := newTestReceiver(t, WithClock(mock))

	var mu sync.Mutex
	var events []pkgif.ConnectivityEvent
	r.OnConnectivityChange(func(ev pkgif.ConnectivityEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	sub := r.SubscribeConnectivity()
	defer sub.Close()

	assert.Equal(t, pkgif.Disconnected, r.Connectivity(), "初始为 Disconnected")

	r.handleHeartbeats([]types.HeartbeatItem{{SourceID: 1, Sequence: 1, State: types.HeartbeatAcquiring}}, mock.Now())
	r.checkConnectivity(mock.Now())
	assert.Equal(t, pkgif.Connected, r.Connectivity())

	// 超时窗口内保持 Connected
	mock.Add(900 * time.Millisecond)
	r.checkConnectivity(mock.Now())
	assert.Equal(t, pkgif.Connected, r.Connectivity())

	mock.Add(200 * time.Millisecond)
	r.checkConnectivity(mock.Now())
	assert.Equal(t, pkgif.Disconnected, r.Connectivity())

	// 再次收到心跳恢复
	r.handleHeartbeats([]types.HeartbeatItem{{SourceID: 1, Sequence: 2}}, mock.Now())
	assert.Equal(t, pkgif.Connected, r.Connectivity())

	// 回调异步执行
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 3
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, pkgif.Connected, events[0].Current)
	assert.Equal(t, pkgif.Disconnected, events[1].Current)
	assert.Equal(t, pkgif.Disconnected, events[2].Previous)
	assert.Equal(t, int64(1), events[1].LastHeartbeat.Sequence)
	mu.Unlock()

	var broadcast []pkgif.ConnectivityEvent
	for len(broadcast) < 3 {
		broadcast = append(broadcast, <-sub.Out())
	}
	assert.Equal(t, pkgif.Disconnected, broadcast[1].Current)
	assert.Equal(t, int64(2), r.Stats().Heartbeats)
}

// TestReceiver_StopIdempotent 两次 Stop，第二次为空操作
func TestReceiver_StopIdempotent(t *testing.T) {
	r, _ := newTestReceiver(t)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Start(ctx), "已运行时 Start 为空操作")
	assert.Equal(t, pkgif.ReceiverRunning, r.State())

	require.NoError(t, r.Stop(ctx))
	assert.Equal(t, pkgif.ReceiverStopped, r.State())
	require.NoError(t, r.Stop(ctx))
	assert.Equal(t, pkgif.ReceiverStopped, r.State())

	// 可以再次启动
	require.NoError(t, r.Start(ctx))
	assert.Equal(t, pkgif.ReceiverRunning, r.State())
	require.NoError(t, r.Stop(ctx))
}

// TestReceiver_StartFailsOnUnavailableChannel 通道无法打开时启动失败
func TestReceiver_StartFailsOnUnavailableChannel(t *testing.T) {
	r, reg := newTestReceiver(t)

	// 同名通道已以不同容量打开
	_, err := channel.GetOrCreate(reg, "TestData", 32, types.SampleCodec{})
	require.NoError(t, err)

	err = r.Start(context.Background())
	assert.ErrorIs(t, err, channel.ErrCapacityMismatch)
	assert.Equal(t, pkgif.ReceiverStopped, r.State())
}

// TestReceiver_EndToEnd 写入通道的条目按到达顺序推送给订阅者
func TestReceiver_EndToEnd(t *testing.T) {
	r, reg := newTestReceiver(t)
	ctx := context.Background()

	all := r.Subscribe()
	defer all.Close()
	only2 := r.SubscribeID(2)
	defer only2.Close()

	require.NoError(t, r.Start(ctx))
	defer r.Stop(ctx)

	data, err := channel.GetOrCreate(reg, "TestData", 64, types.SampleCodec{})
	require.NoError(t, err)
	status, err := channel.GetOrCreate(reg, "TestStatus", 8, types.HeartbeatCodec{})
	require.NoError(t, err)

	require.NoError(t, status.Write(types.HeartbeatItem{SourceID: 1, Sequence: 1}))
	require.NoError(t, data.WriteBatch([]types.SampleItem{sample(1, 1), sample(2, 1), sample(1, 2), sample(2, 2)}))

	var got []types.SampleItem
	timeout := time.After(2 * time.Second)
	for len(got) < 4 {
		select {
		case item := <-all.Out():
			got = append(got, item)
		case <-timeout:
			t.Fatalf("等待超时: 仅收到 %d 条", len(got))
		}
	}
	assert.Equal(t, []types.SampleItem{sample(1, 1), sample(2, 1), sample(1, 2), sample(2, 2)}, got)

	assert.Equal(t, sample(2, 1), <-only2.Out())
	assert.Equal(t, sample(2, 2), <-only2.Out())

	require.Eventually(t, func() bool {
		return r.Connectivity() == pkgif.Connected
	}, 2*time.Second, 5*time.Millisecond)
}

// TestReceiver_PollErrorsDoNotStopLoop 轮询错误后循环继续
func TestReceiver_PollErrorsDoNotStopLoop(t *testing.T) {
	r, reg := newTestReceiver(t)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	defer r.Stop(ctx)

	// 直接关闭底层通道，使每次 ReadBatch 返回 ErrChannelClosed
	data, err := channel.GetOrCreate(reg, "TestData", 64, types.SampleCodec{})
	require.NoError(t, err)
	require.NoError(t, data.Close())

	require.Eventually(t, func() bool {
		return r.Stats().PollErrors >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, pkgif.ReceiverRunning, r.State())
}

// TestReceiver_ConnectivityTimeoutWithDataErrors 数据通道持续出错时心跳超时仍生效
func TestReceiver_ConnectivityTimeoutWithDataErrors(t *testing.T) {
	mock := clock.NewMock()
	r, reg := newTestReceiver(t, WithClock(mock))
	require.NoError(t, r.openChannels())

	status, err := channel.GetOrCreate(reg, "TestStatus", 8, types.HeartbeatCodec{})
	require.NoError(t, err)
	require.NoError(t, status.Write(types.HeartbeatItem{SourceID: 1, Sequence: 1}))

	require.NoError(t, r.pollOnce())
	assert.Equal(t, pkgif.Connected, r.Connectivity())

	data, err := channel.GetOrCreate(reg, "TestData", 64, types.SampleCodec{})
	require.NoError(t, err)
	require.NoError(t, data.Close())

	mock.Add(5 * time.Second)
	err = r.pollOnce()
	assert.ErrorIs(t, err, types.ErrChannelClosed)
	assert.Equal(t, pkgif.Disconnected, r.Connectivity())
}

// TestReceiver_SlowCallbackDoesNotBlock 阻塞的回调不影响连通状态更新
func TestReceiver_SlowCallbackDoesNotBlock(t *testing.T) {
	mock := clock.NewMock()
	r, _ := newTestReceiver(t, WithClock(mock))

	release := make(chan struct{})
	defer close(release)
	r.OnConnectivityChange(func(pkgif.ConnectivityEvent) { <-release })

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 10; i++ {
			r.handleHeartbeats([]types.HeartbeatItem{{SourceID: 1, Sequence: int64(i)}}, mock.Now())
			mock.Add(2 * time.Second)
			r.checkConnectivity(mock.Now())
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("连通状态更新被回调阻塞")
	}
	assert.Equal(t, pkgif.Disconnected, r.Connectivity())
}
