package types

import "encoding/binary"

// HeartbeatState 生产者上报的运行状态
type HeartbeatState int32

const (
	// HeartbeatIdle 生产者在线但未采集
	HeartbeatIdle HeartbeatState = iota
	// HeartbeatAcquiring 正在采集
	HeartbeatAcquiring
	// HeartbeatStopping 正在停止
	HeartbeatStopping
)

// String 返回状态名
func (s HeartbeatState) String() string {
	switch s {
	case HeartbeatIdle:
		return "idle"
	case HeartbeatAcquiring:
		return "acquiring"
	case HeartbeatStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// HeartbeatItem 低频心跳项，写入状态通道
type HeartbeatItem struct {
	SourceID  int64
	Sequence  int64
	Timestamp int64 // Unix 纳秒
	State     HeartbeatState
}

// HeartbeatItemSize HeartbeatItem 的线上字节数（末尾 4 字节填充）
const HeartbeatItemSize = 32

// HeartbeatCodec HeartbeatItem 的固定布局编解码器
type HeartbeatCodec struct{}

// Size 返回单项字节数
func (HeartbeatCodec) Size() int { return HeartbeatItemSize }

// Encode 将 v 写入 dst
func (HeartbeatCodec) Encode(dst []byte, v HeartbeatItem) {
	_ = dst[HeartbeatItemSize-1]
	binary.LittleEndian.PutUint64(dst[0:], uint64(v.SourceID))
	binary.LittleEndian.PutUint64(dst[8:], uint64(v.Sequence))
	binary.LittleEndian.PutUint64(dst[16:], uint64(v.Timestamp))
	binary.LittleEndian.PutUint32(dst[24:], uint32(v.State))
	clear(dst[28:HeartbeatItemSize])
}

// Decode 从 src 解码
func (HeartbeatCodec) Decode(src []byte) HeartbeatItem {
	_ = src[HeartbeatItemSize-1]
	return HeartbeatItem{
		SourceID:  int64(binary.LittleEndian.Uint64(src[0:])),
		Sequence:  int64(binary.LittleEndian.Uint64(src[8:])),
		Timestamp: int64(binary.LittleEndian.Uint64(src[16:])),
		State:     HeartbeatState(binary.LittleEndian.Uint32(src[24:])),
	}
}
