package rpc

import (
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-stationbus/pkg/types"
)

// FrameKind 帧类型
type FrameKind uint8

const (
	// FrameRequest 命令请求
	FrameRequest FrameKind = iota + 1
	// FrameResponse 命令响应
	FrameResponse
)

// String 返回帧类型名
func (k FrameKind) String() string {
	switch k {
	case FrameRequest:
		return "request"
	case FrameResponse:
		return "response"
	default:
		return "invalid"
	}
}

// 字段容量
const (
	MaxRequestID    = 64
	MaxRoute        = 128
	MaxReplyTo      = 128
	MaxErrorMessage = 256
	MaxPayload      = 2048
)

// 帧布局（小端）：
//
//	0   kind u8 | pad[3]
//	4   status i32
//	8   processing_ms i64
//	16  id_len u16 | route_len u16 | reply_len u16 | err_len u16
//	24  payload_len u32 | pad[4]
//	32  request_id[64]
//	96  route[128]
//	224 reply_to[128]
//	352 error_message[256]
//	608 payload[2048]
const (
	offKind       = 0
	offStatus     = 4
	offMs         = 8
	offIDLen      = 16
	offRouteLen   = 18
	offReplyLen   = 20
	offErrLen     = 22
	offPayloadLen = 24
	offID         = 32
	offRoute      = offID + MaxRequestID
	offReply      = offRoute + MaxRoute
	offErr        = offReply + MaxReplyTo
	offPayload    = offErr + MaxErrorMessage

	// FrameSize 单帧字节数
	FrameSize = offPayload + MaxPayload
)

// Frame 命令通道上的定长帧
type Frame struct {
	Kind         FrameKind
	RequestID    string
	Route        string
	ReplyTo      string
	Status       types.StatusCode
	ProcessingMs int64
	ErrorMessage string
	Payload      []byte
}

// Validate 检查帧能否无损编码
func (f *Frame) Validate() error {
	switch {
	case len(f.RequestID) > MaxRequestID:
		return fmt.Errorf("%w: request_id %d > %d", ErrFieldTooLong, len(f.RequestID), MaxRequestID)
	case len(f.Route) > MaxRoute:
		return fmt.Errorf("%w: route %d > %d", ErrFieldTooLong, len(f.Route), MaxRoute)
	case len(f.ReplyTo) > MaxReplyTo:
		return fmt.Errorf("%w: reply_to %d > %d", ErrFieldTooLong, len(f.ReplyTo), MaxReplyTo)
	case len(f.Payload) > MaxPayload:
		return fmt.Errorf("%w (%d)", ErrPayloadTooLarge, len(f.Payload))
	}
	return nil
}

// RequestFrame 由请求构造请求帧
func RequestFrame(req *types.CommandRequest, replyTo string) Frame {
	return Frame{
		Kind:      FrameRequest,
		RequestID: req.RequestID,
		Route:     req.Route,
		ReplyTo:   replyTo,
		Payload:   req.Payload,
	}
}

// ResponseFrame 由响应构造响应帧
//
// 错误信息超出容量时截断。
func ResponseFrame(route string, resp *types.CommandResponse) Frame {
	return Frame{
		Kind:         FrameResponse,
		RequestID:    resp.RequestID,
		Route:        route,
		Status:       resp.Status,
		ProcessingMs: resp.ProcessingTimeMs,
		ErrorMessage: truncate(resp.ErrorMessage, MaxErrorMessage),
		Payload:      resp.Payload,
	}
}

// Request 转换为命令请求
func (f *Frame) Request() *types.CommandRequest {
	return &types.CommandRequest{
		RequestID: f.RequestID,
		Route:     f.Route,
		Payload:   f.Payload,
	}
}

// Response 转换为命令响应
func (f *Frame) Response() *types.CommandResponse {
	return &types.CommandResponse{
		RequestID:        f.RequestID,
		Status:           f.Status,
		Payload:          f.Payload,
		ErrorMessage:     f.ErrorMessage,
		ProcessingTimeMs: f.ProcessingMs,
	}
}

// FrameCodec Frame 的固定布局编解码器
//
// Encode 不返回错误，超长字段被截断；写入前应先调用 Validate。
type FrameCodec struct{}

// Size 返回单帧字节数
func (FrameCodec) Size() int { return FrameSize }

// Encode 将 f 写入 dst
func (FrameCodec) Encode(dst []byte, f Frame) {
	_ = dst[FrameSize-1]
	clear(dst)

	dst[offKind] = byte(f.Kind)
	binary.LittleEndian.PutUint32(dst[offStatus:], uint32(f.Status))
	binary.LittleEndian.PutUint64(dst[offMs:], uint64(f.ProcessingMs))

	idLen := copy(dst[offID:offID+MaxRequestID], f.RequestID)
	routeLen := copy(dst[offRoute:offRoute+MaxRoute], f.Route)
	replyLen := copy(dst[offReply:offReply+MaxReplyTo], f.ReplyTo)
	errLen := copy(dst[offErr:offErr+MaxErrorMessage], f.ErrorMessage)
	payloadLen := copy(dst[offPayload:offPayload+MaxPayload], f.Payload)

	binary.LittleEndian.PutUint16(dst[offIDLen:], uint16(idLen))
	binary.LittleEndian.PutUint16(dst[offRouteLen:], uint16(routeLen))
	binary.LittleEndian.PutUint16(dst[offReplyLen:], uint16(replyLen))
	binary.LittleEndian.PutUint16(dst[offErrLen:], uint16(errLen))
	binary.LittleEndian.PutUint32(dst[offPayloadLen:], uint32(payloadLen))
}

// Decode 从 src 解码，长度字段越界时按容量截断
func (FrameCodec) Decode(src []byte) Frame {
	_ = src[FrameSize-1]

	f := Frame{
		Kind:         FrameKind(src[offKind]),
		Status:       types.StatusCode(int32(binary.LittleEndian.Uint32(src[offStatus:]))),
		ProcessingMs: int64(binary.LittleEndian.Uint64(src[offMs:])),
	}
	f.RequestID = field(src, offID, binary.LittleEndian.Uint16(src[offIDLen:]), MaxRequestID)
	f.Route = field(src, offRoute, binary.LittleEndian.Uint16(src[offRouteLen:]), MaxRoute)
	f.ReplyTo = field(src, offReply, binary.LittleEndian.Uint16(src[offReplyLen:]), MaxReplyTo)
	f.ErrorMessage = field(src, offErr, binary.LittleEndian.Uint16(src[offErrLen:]), MaxErrorMessage)

	n := min(int(binary.LittleEndian.Uint32(src[offPayloadLen:])), MaxPayload)
	if n > 0 {
		f.Payload = make([]byte, n)
		copy(f.Payload, src[offPayload:offPayload+n])
	}
	return f
}

func field(src []byte, off int, n uint16, limit int) string {
	return string(src[off : off+min(int(n), limit)])
}

// truncate 按字节截断并避开半个 UTF-8 字符
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
