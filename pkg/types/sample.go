package types

import (
	"encoding/binary"
	"math"
)

// ============================================================================
//                              Quality 采样质量
// ============================================================================

// Quality 采样质量
type Quality uint8

const (
	// QualityGood 正常
	QualityGood Quality = iota
	// QualityUncertain 不确定（如量程边界）
	QualityUncertain
	// QualityBad 失败（硬件读取错误，值为 NaN）
	QualityBad
)

// String 返回质量的字符串表示
func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityUncertain:
		return "uncertain"
	case QualityBad:
		return "bad"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              SampleItem 采样项
// ============================================================================

// SampleItem 单个信号的一次采样
//
// 跨进程传输时使用 SampleCodec 的固定 40 字节布局，
// 与 Go 结构体内存布局无关。
type SampleItem struct {
	ChannelID int64
	Sequence  int64
	Timestamp int64 // Unix 纳秒
	Value     float64
	Quality   Quality
}

// SampleItemSize SampleItem 的线上字节数
//
//	offset  size  field
//	0       8     channel_id  (int64 LE)
//	8       8     sequence    (int64 LE)
//	16      8     timestamp   (int64 LE)
//	24      8     value       (float64 bits LE)
//	32      1     quality
//	33      7     padding (zero)
const SampleItemSize = 40

// SampleCodec SampleItem 的固定布局编解码器
type SampleCodec struct{}

// Size 返回单项字节数
func (SampleCodec) Size() int { return SampleItemSize }

// Encode 将 v 写入 dst（len(dst) >= SampleItemSize）
func (SampleCodec) Encode(dst []byte, v SampleItem) {
	_ = dst[SampleItemSize-1]
	binary.LittleEndian.PutUint64(dst[0:], uint64(v.ChannelID))
	binary.LittleEndian.PutUint64(dst[8:], uint64(v.Sequence))
	binary.LittleEndian.PutUint64(dst[16:], uint64(v.Timestamp))
	binary.LittleEndian.PutUint64(dst[24:], math.Float64bits(v.Value))
	dst[32] = byte(v.Quality)
	clear(dst[33:SampleItemSize])
}

// Decode 从 src 解码
func (SampleCodec) Decode(src []byte) SampleItem {
	_ = src[SampleItemSize-1]
	return SampleItem{
		ChannelID: int64(binary.LittleEndian.Uint64(src[0:])),
		Sequence:  int64(binary.LittleEndian.Uint64(src[8:])),
		Timestamp: int64(binary.LittleEndian.Uint64(src[16:])),
		Value:     math.Float64frombits(binary.LittleEndian.Uint64(src[24:])),
		Quality:   Quality(src[32]),
	}
}
