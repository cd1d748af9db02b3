package types

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSampleCodec_RoundTrip 测试任意字段的编解码往返
func TestSampleCodec_RoundTrip(t *testing.T) {
	codec := SampleCodec{}
	require.Equal(t, SampleItemSize, codec.Size())

	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, codec.Size())

	for i := 0; i < 200; i++ {
		in := SampleItem{
			ChannelID: rng.Int63() - rng.Int63(),
			Sequence:  rng.Int63(),
			Timestamp: rng.Int63() - rng.Int63(),
			Value:     rng.NormFloat64() * 1e6,
			Quality:   Quality(rng.Intn(3)),
		}
		codec.Encode(buf, in)
		assert.Equal(t, in, codec.Decode(buf))
	}
}

// TestSampleCodec_Layout 测试固定偏移与填充字节
func TestSampleCodec_Layout(t *testing.T) {
	codec := SampleCodec{}
	buf := make([]byte, SampleItemSize)
	for i := range buf {
		buf[i] = 0xFF
	}

	codec.Encode(buf, SampleItem{ChannelID: 1, Sequence: 2, Timestamp: 3, Value: 1.5, Quality: QualityBad})

	assert.Equal(t, byte(1), buf[0])
	assert.Equal(t, byte(2), buf[8])
	assert.Equal(t, byte(3), buf[16])
	assert.Equal(t, math.Float64bits(1.5), uint64(buf[24])|uint64(buf[25])<<8|uint64(buf[26])<<16|uint64(buf[27])<<24|
		uint64(buf[28])<<32|uint64(buf[29])<<40|uint64(buf[30])<<48|uint64(buf[31])<<56)
	assert.Equal(t, byte(QualityBad), buf[32])
	assert.Equal(t, make([]byte, 7), buf[33:40], "填充字节必须清零")
}

// TestSampleCodec_NaN 测试 NaN 值保持位模式
func TestSampleCodec_NaN(t *testing.T) {
	codec := SampleCodec{}
	buf := make([]byte, SampleItemSize)

	codec.Encode(buf, SampleItem{ChannelID: 7, Value: math.NaN(), Quality: QualityBad})
	out := codec.Decode(buf)

	assert.True(t, math.IsNaN(out.Value))
	assert.Equal(t, QualityBad, out.Quality)
}

func TestHeartbeatCodec_RoundTrip(t *testing.T) {
	codec := HeartbeatCodec{}
	buf := make([]byte, codec.Size())

	in := HeartbeatItem{SourceID: 9, Sequence: 123456, Timestamp: -5, State: HeartbeatAcquiring}
	codec.Encode(buf, in)
	assert.Equal(t, in, codec.Decode(buf))
}

func TestQuality_String(t *testing.T) {
	assert.Equal(t, "good", QualityGood.String())
	assert.Equal(t, "uncertain", QualityUncertain.String())
	assert.Equal(t, "bad", QualityBad.String())
	assert.Equal(t, "unknown", Quality(9).String())
}
