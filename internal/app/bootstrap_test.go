//go:build unix

package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/internal/app/station"
)

func testConfig(t *testing.T, role string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Role = role
	cfg.Channels.Dir = t.TempDir()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Metrics.ListenAddr = ""
	cfg.Acquisition.AutoStart = false
	return cfg
}

func TestBootstrap_AllRole(t *testing.T) {
	b := NewBootstrap(testConfig(t, config.RoleAll))

	rt, err := b.Start(context.Background())
	require.NoError(t, err)
	defer func() { assert.NoError(t, rt.Stop(context.Background())) }()

	require.NotNil(t, rt.Registry)
	require.NotNil(t, rt.Receiver)
	require.NotNil(t, rt.Client)
	require.NotNil(t, rt.Router)
	require.NotNil(t, rt.Server)
	require.NotNil(t, rt.Acquisition)
	require.NotNil(t, rt.Controller)
	require.NotNil(t, rt.Signals)
	require.NotNil(t, rt.Metrics)

	assert.Contains(t, rt.Router.Routes(), station.RoutePing)

	// 命令经共享内存往返
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var reply station.PingReply
	require.NoError(t, rt.Client.Invoke(ctx, station.RoutePing, station.PingRequest{Nonce: "n1"}, &reply))
	assert.Equal(t, "n1", reply.Nonce)
}

func TestBootstrap_ConsumerRole(t *testing.T) {
	cfg := testConfig(t, config.RoleConsumer)
	cfg.Metrics.Enable = false

	rt, err := NewBootstrap(cfg).Build()
	require.NoError(t, err)

	assert.NotNil(t, rt.Receiver)
	assert.NotNil(t, rt.Client)
	assert.Nil(t, rt.Router)
	assert.Nil(t, rt.Acquisition)
	assert.Nil(t, rt.Signals)
	assert.Nil(t, rt.Metrics)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "observer")
	_, err := NewBootstrap(cfg).Build()
	assert.Error(t, err)
}

func TestBootstrap_StopBeforeBuild(t *testing.T) {
	assert.ErrorIs(t, NewBootstrap(nil).Stop(context.Background()), ErrNotBuilt)
}
