package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/core/channel"
	"github.com/dep2p/go-stationbus/internal/core/receiver"
	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/internal/core/rpc"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

func newTestCollector() *Collector {
	return NewCollector(Config{Enabled: true, Namespace: "test", Clock: clock.NewMock()})
}

func TestCollector_Channel(t *testing.T) {
	c := newTestCollector()

	c.ObserveWrite("data", 10, 2)
	c.ObserveWrite("data", 5, 0)
	c.ObserveRead("data", 12)
	c.ObserveLockTimeout("data")

	assert.Equal(t, float64(15), testutil.ToFloat64(c.itemsWritten.WithLabelValues("data")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.itemsOverwritten.WithLabelValues("data")))
	assert.Equal(t, float64(12), testutil.ToFloat64(c.itemsRead.WithLabelValues("data")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.lockTimeouts.WithLabelValues("data")))

	st := c.Throughput().ForChannel("data")
	assert.Equal(t, int64(15), st.ItemsIn)
	assert.Equal(t, int64(12), st.ItemsOut)
}

func TestCollector_Receiver(t *testing.T) {
	c := newTestCollector()

	c.ObserveReceived(100)
	c.ObserveLoss(3)
	c.ObserveLoss(0)
	c.ObservePollError()
	c.ObserveConnectivity(pkgif.Connected)

	assert.Equal(t, float64(100), testutil.ToFloat64(c.samplesReceived))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.samplesLost))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.pollErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.connected))

	c.ObserveConnectivity(pkgif.Disconnected)
	assert.Zero(t, testutil.ToFloat64(c.connected))
}

func TestCollector_RouterAndRPC(t *testing.T) {
	c := newTestCollector()

	c.ObserveRoute("valve/open", types.StatusSuccess, 2*time.Millisecond)
	c.ObserveRoute("valve/open", types.StatusTimeout, time.Second)
	c.ObserveInflight(1)
	c.ObserveInflight(1)
	c.ObserveInflight(-1)
	c.ObserveCacheHit()

	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.commands.WithLabelValues("valve/open", types.StatusSuccess.String())))
	assert.Equal(t, 1, testutil.CollectAndCount(c.commandDuration))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.inflight))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.cacheHits))
}

func TestServer_ServesMetrics(t *testing.T) {
	c := newTestCollector()
	c.ObserveCacheHit()

	srv := NewServer("127.0.0.1:0", c)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_rpc_cache_hits_total 1")
}

func TestModule_ProvidesObservers(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.ListenAddr = ""

	var (
		c   *Collector
		cho channel.Observer
		rco receiver.Observer
		rto router.Observer
		rpo rpc.Observer
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&c, &cho, &rco, &rto, &rpo),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, c)
	assert.Same(t, c, cho)
	assert.Same(t, c, rco)
	assert.Same(t, c, rto)
	assert.Same(t, c, rpo)
}
