package acquisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplayBuffer_DrainFIFO(t *testing.T) {
	b := NewReplayBuffer[int](4)
	for i := 1; i <= 3; i++ {
		assert.False(t, b.Push(i))
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{1, 2}, b.Drain(2))
	assert.Equal(t, []int{3}, b.Drain(10))
	assert.Nil(t, b.Drain(10))
	assert.Nil(t, b.Drain(0))
}

// TestReplayBuffer_DropOldest 待发布条目满时丢弃最旧的
func TestReplayBuffer_DropOldest(t *testing.T) {
	b := NewReplayBuffer[int](3)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	assert.True(t, b.Push(4))
	assert.True(t, b.Push(5))

	assert.Equal(t, int64(2), b.Dropped())
	assert.Equal(t, []int{3, 4, 5}, b.Drain(10))
}

// TestReplayBuffer_ReplayKeepsHistory Replay 包含已发布条目且不消费
func TestReplayBuffer_ReplayKeepsHistory(t *testing.T) {
	b := NewReplayBuffer[int](4)
	for i := 1; i <= 6; i++ {
		b.Push(i)
	}
	b.Drain(10)
	assert.Equal(t, 0, b.Len())

	assert.Equal(t, []int{5, 6}, b.Replay(2))
	assert.Equal(t, []int{3, 4, 5, 6}, b.Replay(100))
	assert.Nil(t, b.Replay(0))

	b.Push(7)
	assert.Equal(t, []int{7}, b.Drain(10))
	assert.Equal(t, []int{4, 5, 6, 7}, b.Replay(4))
}

func TestReplayBuffer_MinimumCapacity(t *testing.T) {
	b := NewReplayBuffer[int](0)
	assert.Equal(t, 1, b.Cap())
	b.Push(1)
	b.Push(2)
	assert.Equal(t, []int{2}, b.Drain(5))
	assert.Nil(t, NewReplayBuffer[int](2).Replay(3))
}
