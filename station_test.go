//go:build unix

package stationbus

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/pkg/types"
)

func newTestStation(t *testing.T, opts ...Option) *Station {
	t.Helper()
	base := []Option{
		WithRole(RoleAll),
		WithChannelDir(t.TempDir()),
		WithDataDir(t.TempDir()),
		WithMetrics(false, ""),
		WithSignals(types.SignalConfig{ID: 1, Name: "pressure", Unit: "bar", SampleRateHz: 50, Min: 0, Max: 10}),
	}
	st, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStation_Lifecycle(t *testing.T) {
	st := newTestStation(t, WithAutoStart(false))
	assert.Equal(t, StateIdle, st.State())
	assert.Nil(t, st.Receiver())
	assert.ErrorIs(t, st.Stop(context.Background()), ErrNotStarted)

	require.NoError(t, st.Start(context.Background()))
	assert.Equal(t, StateRunning, st.State())
	assert.ErrorIs(t, st.Start(context.Background()), ErrAlreadyStarted)

	assert.NotNil(t, st.Receiver())
	assert.NotNil(t, st.Client())
	assert.NotNil(t, st.Router())
	assert.NotNil(t, st.Registry())
	assert.NotNil(t, st.Acquisition())
	assert.NotNil(t, st.Signals())

	require.NoError(t, st.Stop(context.Background()))
	assert.Equal(t, StateClosed, st.State())
	assert.ErrorIs(t, st.Start(context.Background()), ErrStationClosed)
	assert.NoError(t, st.Close())
}

func TestStation_SamplesFlowEndToEnd(t *testing.T) {
	st := newTestStation(t, WithAutoStart(true))
	require.NoError(t, st.Start(context.Background()))

	sub := st.Receiver().SubscribeID(1)
	defer sub.Close()

	select {
	case item := <-sub.Out():
		assert.Equal(t, int64(1), item.ChannelID)
		assert.Equal(t, types.QualityGood, item.Quality)
	case <-time.After(5 * time.Second):
		t.Fatal("没有收到采样")
	}

	require.Eventually(t, func() bool {
		return st.Receiver().Connectivity().String() == "connected"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStation_RegisterCustomCommand(t *testing.T) {
	st := newTestStation(t, WithAutoStart(false))
	assert.ErrorIs(t, st.Register("echo/upper", strings.ToUpper), ErrNotStarted)

	require.NoError(t, st.Start(context.Background()))
	require.NoError(t, st.Register("echo/upper", strings.ToUpper))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out string
	require.NoError(t, st.Client().Invoke(ctx, "echo/upper", "abc", &out))
	assert.Equal(t, "ABC", out)

	err := st.Client().Invoke(ctx, "echo/missing", "x", nil)
	assert.ErrorIs(t, err, types.ErrHandlerNotFound)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithRole("observer"))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)

	_, err = New(WithSignals(types.SignalConfig{ID: 1}))
	assert.Error(t, err)
}
