package registrar

import (
	"encoding/json"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"

	"github.com/dep2p/go-stationbus/config"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// typeChecker 可在启动期拒绝不支持的负载/结果类型的序列化器
type typeChecker interface {
	CheckType(t reflect.Type) error
}

// emptyPayloader 空负载是否为合法编码（如 protobuf 零值消息）
type emptyPayloader interface {
	AcceptsEmpty() bool
}

// AcceptsEmpty 判断序列化器是否把空负载解码为零值
func AcceptsEmpty(ser pkgif.Serializer) bool {
	ep, ok := ser.(emptyPayloader)
	return ok && ep.AcceptsEmpty()
}

// NewSerializer 按名称创建序列化器
func NewSerializer(name string) (pkgif.Serializer, error) {
	switch name {
	case "", config.SerializerJSON:
		return JSONSerializer{}, nil
	case config.SerializerProto:
		return ProtoSerializer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSerializer, name)
	}
}

// ============================================================================
//                              JSON
// ============================================================================

// JSONSerializer JSON 文本负载
type JSONSerializer struct{}

// Name 返回 "json"
func (JSONSerializer) Name() string { return config.SerializerJSON }

// Marshal 编码
func (JSONSerializer) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %w", types.ErrSerialization, err)
	}
	return data, nil
}

// Unmarshal 解码
func (JSONSerializer) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: json: %w", types.ErrSerialization, err)
	}
	return nil
}

// ============================================================================
//                              Protobuf
// ============================================================================

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// ProtoSerializer protobuf 二进制负载，负载与结果类型必须实现 proto.Message
type ProtoSerializer struct{}

// Name 返回 "proto"
func (ProtoSerializer) Name() string { return config.SerializerProto }

// Marshal 编码
func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: proto: %T is not a proto.Message", types.ErrSerialization, v)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: proto: %w", types.ErrSerialization, err)
	}
	return data, nil
}

// AcceptsEmpty 零值消息编码为 0 字节
func (ProtoSerializer) AcceptsEmpty() bool { return true }

// Unmarshal 解码
func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: proto: %T is not a proto.Message", types.ErrSerialization, v)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("%w: proto: %w", types.ErrSerialization, err)
	}
	return nil
}

// CheckType 要求类型实现 proto.Message
func (ProtoSerializer) CheckType(t reflect.Type) error {
	if !t.Implements(protoMessageType) {
		return fmt.Errorf("%w: %s does not implement proto.Message", ErrUnsupportedShape, t)
	}
	return nil
}
