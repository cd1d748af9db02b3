package shm

import "encoding/binary"

const (
	// Magic 段标识 "SBUSSHM1"
	Magic uint64 = 0x314D_4853_5355_4253

	// LayoutVersion 布局版本，布局变化时递增
	LayoutVersion uint32 = 1

	// HeaderSize 前导区字节数
	HeaderSize = 64

	// MaxCapacity 容量上限（索引为 int32）
	MaxCapacity = 1<<31 - 1
)

const (
	offMagic     = 0
	offVersion   = 8
	offItemSize  = 12
	offCapacity  = 16
	offWrite     = 20
	offRead      = 24
	offCount     = 28
	offWriterSeq = 32
)

// Header 环形缓冲区头部
//
// 不变式：0 <= Count <= capacity，WriteIndex/ReadIndex ∈ [0, capacity)。
type Header struct {
	WriteIndex int32
	ReadIndex  int32
	Count      int32

	// WriterSeq 自创建以来写入的条目总数（含被覆盖的）
	WriterSeq uint64
}

// SegmentSize 返回给定几何参数的段总字节数
func SegmentSize(itemSize, capacity int) int {
	return HeaderSize + itemSize*capacity
}

// geometry 段的固定参数
type geometry struct {
	itemSize int
	capacity int
}

// writePreamble 初始化前导区（creator 持文件锁时调用）
func writePreamble(buf []byte, g geometry) {
	clear(buf[:HeaderSize])
	le := binary.LittleEndian
	le.PutUint64(buf[offMagic:], Magic)
	le.PutUint32(buf[offVersion:], LayoutVersion)
	le.PutUint32(buf[offItemSize:], uint32(g.itemSize))
	le.PutUint32(buf[offCapacity:], uint32(g.capacity))
}

// preambleBlank 判断前导区是否从未初始化（creator 在截断后、写前导区前崩溃）
func preambleBlank(buf []byte) bool {
	for _, b := range buf[:HeaderSize] {
		if b != 0 {
			return false
		}
	}
	return true
}

// checkPreamble 校验已存在段的前导区
func checkPreamble(buf []byte, g geometry) error {
	le := binary.LittleEndian
	switch {
	case le.Uint64(buf[offMagic:]) != Magic:
		return ErrLayoutMismatch
	case le.Uint32(buf[offVersion:]) != LayoutVersion:
		return ErrLayoutMismatch
	case int(le.Uint32(buf[offItemSize:])) != g.itemSize:
		return ErrLayoutMismatch
	case int(le.Uint32(buf[offCapacity:])) != g.capacity:
		return ErrLayoutMismatch
	}
	return nil
}

func readHeader(buf []byte) Header {
	le := binary.LittleEndian
	return Header{
		WriteIndex: int32(le.Uint32(buf[offWrite:])),
		ReadIndex:  int32(le.Uint32(buf[offRead:])),
		Count:      int32(le.Uint32(buf[offCount:])),
		WriterSeq:  le.Uint64(buf[offWriterSeq:]),
	}
}

func writeHeader(buf []byte, h Header) {
	le := binary.LittleEndian
	le.PutUint32(buf[offWrite:], uint32(h.WriteIndex))
	le.PutUint32(buf[offRead:], uint32(h.ReadIndex))
	le.PutUint32(buf[offCount:], uint32(h.Count))
	le.PutUint64(buf[offWriterSeq:], h.WriterSeq)
}
