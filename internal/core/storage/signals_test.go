package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/config"
	"github.com/dep2p/go-stationbus/pkg/types"
)

func newTestSignalStore(t *testing.T) *SignalStore {
	t.Helper()
	eng, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return NewSignalStore(eng)
}

func testSignal(id int64, name string) types.SignalConfig {
	return types.SignalConfig{ID: id, Name: name, Unit: "bar", SampleRateHz: 10, Min: 0, Max: 100}
}

func TestSignalStore_SaveLoad(t *testing.T) {
	s := newTestSignalStore(t)

	require.NoError(t, s.Save(testSignal(1, "pressure")))
	sig, err := s.Load(1)
	require.NoError(t, err)
	assert.Equal(t, testSignal(1, "pressure"), sig)

	// 覆盖写入
	require.NoError(t, s.Save(testSignal(1, "pressure-2")))
	sig, err = s.Load(1)
	require.NoError(t, err)
	assert.Equal(t, "pressure-2", sig.Name)

	_, err = s.Load(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSignalStore_ListOrdered(t *testing.T) {
	s := newTestSignalStore(t)

	for _, id := range []int64{300, -5, 2, 0, 1 << 40} {
		require.NoError(t, s.Save(testSignal(id, "s")))
	}

	list, err := s.List()
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, sig := range list {
		ids = append(ids, sig.ID)
	}
	assert.Equal(t, []int64{-5, 0, 2, 300, 1 << 40}, ids)
}

func TestSignalStore_Delete(t *testing.T) {
	s := newTestSignalStore(t)
	require.NoError(t, s.Save(testSignal(7, "flow")))
	require.NoError(t, s.Delete(7))

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSignalStore_RejectsInvalid(t *testing.T) {
	s := newTestSignalStore(t)
	err := s.Save(types.SignalConfig{ID: 1, Name: "", SampleRateHz: 1})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestConfigFromUnified(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.DataDir = "/tmp/sb"
	cfg.Storage.SyncWrites = true

	c := ConfigFromUnified(cfg)
	assert.Equal(t, "/tmp/sb/stationbus.db", c.Path)
	assert.True(t, c.SyncWrites)
	assert.True(t, c.ToEngineConfig().SyncWrites)

	c = ConfigFromUnified(nil)
	assert.NotEmpty(t, c.Path)
}
