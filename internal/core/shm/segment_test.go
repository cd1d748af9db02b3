//go:build unix

package shm

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/pkg/types"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{Dir: t.TempDir(), ItemSize: 16, Capacity: 4}
}

func TestOpen_CreatorAndAttach(t *testing.T) {
	opts := testOptions(t)

	first, err := Open("StationData", opts)
	require.NoError(t, err)
	defer first.Close()
	assert.True(t, first.Creator())

	fi, err := os.Stat(first.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(SegmentSize(16, 4)), fi.Size())

	second, err := Open("StationData", opts)
	require.NoError(t, err)
	defer second.Close()
	assert.False(t, second.Creator())
	assert.Equal(t, first.Path(), second.Path())

	// 一方写入的头部对另一方可见
	require.NoError(t, first.Lock(context.Background()))
	first.SetHeader(Header{WriteIndex: 2, ReadIndex: 1, Count: 1, WriterSeq: 2})
	copy(first.Slot(1), []byte("hello-shm-slot!!"))
	first.Unlock()

	require.NoError(t, second.Lock(context.Background()))
	h := second.Header()
	slot := string(second.Slot(1))
	second.Unlock()

	assert.Equal(t, Header{WriteIndex: 2, ReadIndex: 1, Count: 1, WriterSeq: 2}, h)
	assert.Equal(t, "hello-shm-slot!!", slot)
}

func TestOpen_LayoutMismatch(t *testing.T) {
	opts := testOptions(t)

	seg, err := Open("StationStatus", opts)
	require.NoError(t, err)
	defer seg.Close()

	other := opts
	other.Capacity = 8
	_, err = Open("StationStatus", other)
	assert.ErrorIs(t, err, ErrLayoutMismatch)
	assert.ErrorIs(t, err, types.ErrChannelUnavailable)
}

func TestOpen_InvalidArguments(t *testing.T) {
	_, err := Open("", testOptions(t))
	assert.ErrorIs(t, err, ErrInvalidName)

	opts := testOptions(t)
	opts.Capacity = 0
	_, err = Open("x", opts)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	assert.ErrorIs(t, err, types.ErrChannelUnavailable)
}

func TestOpen_BlankPreambleIsReinitialized(t *testing.T) {
	opts := testOptions(t)
	path := opts.Dir + "/" + FileName("Crashed")

	// 模拟 creator 截断后崩溃：文件大小正确但前导区全零
	require.NoError(t, os.WriteFile(path, make([]byte, SegmentSize(opts.ItemSize, opts.Capacity)), 0o600))

	seg, err := Open("Crashed", opts)
	require.NoError(t, err)
	defer seg.Close()
	assert.True(t, seg.Creator())
}

func TestSegment_TryLockContention(t *testing.T) {
	opts := testOptions(t)

	a, err := Open("StationCommand", opts)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open("StationCommand", opts)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Lock(context.Background()))

	ok, err := b.TryLock(20 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "另一个句柄持有文件锁时应超时")

	// 同一句柄的进程内互斥
	ok, err = a.TryLock(0)
	require.NoError(t, err)
	assert.False(t, ok)

	a.Unlock()

	ok, err = b.TryLock(time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	b.Unlock()
}

func TestSegment_Close(t *testing.T) {
	seg, err := Open("Closing", testOptions(t))
	require.NoError(t, err)

	require.NoError(t, seg.Close())
	require.NoError(t, seg.Close())
	assert.True(t, seg.Closed())

	err = seg.Lock(context.Background())
	assert.ErrorIs(t, err, types.ErrChannelClosed)

	_, err = seg.TryLock(time.Millisecond)
	assert.ErrorIs(t, err, types.ErrChannelClosed)
}

func TestSegment_Remove(t *testing.T) {
	opts := testOptions(t)
	seg, err := Open("Removable", opts)
	require.NoError(t, err)

	require.NoError(t, seg.Close())
	require.NoError(t, seg.Remove())
	require.NoError(t, seg.Remove())

	_, err = os.Stat(seg.Path())
	assert.True(t, os.IsNotExist(err))

	again, err := Open("Removable", opts)
	require.NoError(t, err)
	defer again.Close()
	assert.True(t, again.Creator())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "StationData.shm", FileName("StationData"))
	assert.Equal(t, "StationReply.ab-12.shm", FileName("StationReply.ab-12"))
	assert.Equal(t, "a_b_c.shm", FileName("a/b c"))
}
