package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/internal/core/storage/engine"
	"github.com/dep2p/go-stationbus/internal/core/storage/engine/badger"
)

func newTestStore(t *testing.T, prefix string) (*Store, engine.InternalEngine) {
	t.Helper()
	eng, err := badger.New(engine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return New(eng, []byte(prefix)), eng
}

func TestStore_PrefixIsolation(t *testing.T) {
	a, eng := newTestStore(t, "a/")
	b := New(eng, []byte("b/"))

	require.NoError(t, a.Put([]byte("k"), []byte("from-a")))
	require.NoError(t, b.Put([]byte("k"), []byte("from-b")))

	v, err := a.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "from-a", string(v))

	raw, err := eng.Get([]byte("b/k"))
	require.NoError(t, err)
	assert.Equal(t, "from-b", string(raw))

	require.NoError(t, a.Delete([]byte("k")))
	ok, err := a.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_ScanStripsPrefix(t *testing.T) {
	s, eng := newTestStore(t, "meta/")
	require.NoError(t, s.Put([]byte("x"), []byte("1")))
	require.NoError(t, s.Put([]byte("y"), []byte("2")))
	require.NoError(t, eng.Put([]byte("other"), []byte("3")))

	got := map[string]string{}
	require.NoError(t, s.Scan(func(k, v []byte) bool {
		got[string(k)] = string(v)
		return true
	}))
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, got)
}

func TestStore_JSON(t *testing.T) {
	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	s, _ := newTestStore(t, "j/")
	require.NoError(t, s.PutJSON([]byte("one"), record{Name: "one", Count: 1}))
	require.NoError(t, s.PutJSON([]byte("two"), record{Name: "two", Count: 2}))

	var r record
	require.NoError(t, s.GetJSON([]byte("one"), &r))
	assert.Equal(t, record{Name: "one", Count: 1}, r)

	var names []string
	require.NoError(t, ScanJSON(s, func(_ []byte, r record) bool {
		names = append(names, r.Name)
		return true
	}))
	assert.Equal(t, []string{"one", "two"}, names)

	err := s.GetJSON([]byte("missing"), &r)
	assert.True(t, engine.IsNotFound(err))
}

func TestScanJSON_DecodeError(t *testing.T) {
	s, _ := newTestStore(t, "j/")
	require.NoError(t, s.Put([]byte("bad"), []byte("{not json")))

	err := ScanJSON(s, func(_ []byte, _ map[string]any) bool { return true })
	assert.Error(t, err)
}
