package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/internal/core/storage/engine"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(engine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngine_BasicOperations(t *testing.T) {
	e := newTestEngine(t)

	t.Run("Put/Get", func(t *testing.T) {
		require.NoError(t, e.Put([]byte("k1"), []byte("v1")))
		v, err := e.Get([]byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)
	})

	t.Run("Has", func(t *testing.T) {
		ok, err := e.Has([]byte("k1"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = e.Has([]byte("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, e.Delete([]byte("k1")))
		_, err := e.Get([]byte("k1"))
		assert.True(t, engine.IsNotFound(err))
		assert.NoError(t, e.Delete([]byte("k1")))
	})

	t.Run("EmptyKey", func(t *testing.T) {
		assert.ErrorIs(t, e.Put(nil, []byte("v")), engine.ErrEmptyKey)
		_, err := e.Get(nil)
		assert.ErrorIs(t, err, engine.ErrEmptyKey)
	})

	t.Log("✅ 基本操作测试通过")
}

func TestEngine_Scan(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.Put([]byte("a/2"), []byte("two")))
	require.NoError(t, e.Put([]byte("a/1"), []byte("one")))
	require.NoError(t, e.Put([]byte("a/3"), []byte("three")))
	require.NoError(t, e.Put([]byte("b/1"), []byte("other")))

	var keys []string
	require.NoError(t, e.Scan([]byte("a/"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	}))
	assert.Equal(t, []string{"a/1", "a/2", "a/3"}, keys)

	keys = nil
	require.NoError(t, e.Scan([]byte("a/"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return len(keys) < 2
	}))
	assert.Len(t, keys, 2)

	assert.Equal(t, int64(2), e.Stats().NumScans)
}

func TestEngine_Persistence(t *testing.T) {
	dir := t.TempDir()

	e, err := New(engine.DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, e.Put([]byte("persist"), []byte("yes")))
	require.NoError(t, e.Close())

	e, err = New(engine.DefaultConfig(dir))
	require.NoError(t, err)
	defer e.Close()

	v, err := e.Get([]byte("persist"))
	require.NoError(t, err)
	assert.Equal(t, "yes", string(v))
}

func TestEngine_Closed(t *testing.T) {
	e, err := New(engine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, e.Start())
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err = e.Get([]byte("k"))
	assert.True(t, engine.IsClosed(err))
	assert.ErrorIs(t, e.Put([]byte("k"), nil), engine.ErrClosed)
	assert.ErrorIs(t, e.Scan(nil, func(_, _ []byte) bool { return true }), engine.ErrClosed)
	assert.ErrorIs(t, e.Start(), engine.ErrClosed)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)

	_, err = New(engine.DefaultConfig(""))
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}
