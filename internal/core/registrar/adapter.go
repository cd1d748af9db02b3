package registrar

import (
	"context"
	"fmt"
	"reflect"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// resultKind 返回值形态
type resultKind int

const (
	resultNone resultKind = iota
	resultErr
	resultValue
	resultValueErr
	resultAsync
)

// shape 启动期解析出的操作签名
type shape struct {
	fn          reflect.Value
	hasCtx      bool
	payloadType reflect.Type
	result      resultKind
	resultType  reflect.Type
}

// parseShape 校验签名并返回形态描述
func parseShape(op any) (*shape, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: nil operation", ErrUnsupportedShape)
	}
	fn := reflect.ValueOf(op)
	t := fn.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrUnsupportedShape, t)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", ErrUnsupportedShape, t)
	}

	s := &shape{fn: fn}

	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) == contextType {
			s.hasCtx = true
		} else {
			s.payloadType = t.In(0)
		}
	case 2:
		if t.In(0) != contextType {
			return nil, fmt.Errorf("%w: first of two parameters must be context.Context in %s", ErrUnsupportedShape, t)
		}
		s.hasCtx = true
		s.payloadType = t.In(1)
	default:
		return nil, fmt.Errorf("%w: too many parameters in %s", ErrUnsupportedShape, t)
	}
	if s.payloadType == contextType {
		return nil, fmt.Errorf("%w: duplicate context parameter in %s", ErrUnsupportedShape, t)
	}

	switch t.NumOut() {
	case 0:
		s.result = resultNone
	case 1:
		out := t.Out(0)
		switch {
		case out == errorType:
			s.result = resultErr
		case out.Kind() == reflect.Chan && out.ChanDir()&reflect.RecvDir != 0:
			s.result = resultAsync
			s.resultType = out.Elem()
		default:
			s.result = resultValue
			s.resultType = out
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result must be error in %s", ErrUnsupportedShape, t)
		}
		if t.Out(0) == errorType || t.Out(0).Kind() == reflect.Chan {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, t)
		}
		s.result = resultValueErr
		s.resultType = t.Out(0)
	default:
		return nil, fmt.Errorf("%w: too many results in %s", ErrUnsupportedShape, t)
	}
	return s, nil
}

// check 让序列化器在启动期拒绝不支持的类型
func (s *shape) check(ser pkgif.Serializer) error {
	tc, ok := ser.(typeChecker)
	if !ok {
		return nil
	}
	if s.payloadType != nil {
		if err := tc.CheckType(s.payloadType); err != nil {
			return err
		}
	}
	if s.resultType != nil {
		return tc.CheckType(s.resultType)
	}
	return nil
}

// Adapt 把操作适配为命令处理器
func Adapt(ser pkgif.Serializer, op any) (pkgif.CommandHandler, error) {
	s, err := parseShape(op)
	if err != nil {
		return nil, err
	}
	if err := s.check(ser); err != nil {
		return nil, err
	}

	return func(ctx context.Context, req *types.CommandRequest) (*types.CommandResponse, error) {
		args := make([]reflect.Value, 0, 2)
		if s.hasCtx {
			args = append(args, reflect.ValueOf(ctx))
		}
		if s.payloadType != nil {
			arg, err := s.decode(ser, req.Payload)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}

		result, err := s.call(ctx, args)
		if err != nil {
			return nil, err
		}

		resp := &types.CommandResponse{Status: types.StatusSuccess}
		if result.IsValid() && !isNil(result) {
			payload, err := ser.Marshal(result.Interface())
			if err != nil {
				return nil, fmt.Errorf("encode result: %w", err)
			}
			resp.Payload = payload
		}
		return resp, nil
	}, nil
}

// decode 解码负载为参数值
func (s *shape) decode(ser pkgif.Serializer, payload []byte) (reflect.Value, error) {
	if len(payload) == 0 && !AcceptsEmpty(ser) {
		return reflect.Value{}, fmt.Errorf("%w: payload required (%s)", types.ErrInvalidRequest, s.payloadType)
	}

	if s.payloadType.Kind() == reflect.Pointer {
		ptr := reflect.New(s.payloadType.Elem())
		if err := ser.Unmarshal(payload, ptr.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("decode payload: %w", err)
		}
		return ptr, nil
	}

	ptr := reflect.New(s.payloadType)
	if err := ser.Unmarshal(payload, ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("decode payload: %w", err)
	}
	return ptr.Elem(), nil
}

// call 调用操作并按返回形态取出结果
func (s *shape) call(ctx context.Context, args []reflect.Value) (reflect.Value, error) {
	out := s.fn.Call(args)

	switch s.result {
	case resultErr:
		return reflect.Value{}, asError(out[0])
	case resultValue:
		return out[0], nil
	case resultValueErr:
		if err := asError(out[1]); err != nil {
			return reflect.Value{}, err
		}
		return out[0], nil
	case resultAsync:
		return awaitAsync(ctx, out[0])
	default:
		return reflect.Value{}, nil
	}
}

// awaitAsync 等待异步结果或 ctx 结束
func awaitAsync(ctx context.Context, ch reflect.Value) (reflect.Value, error) {
	if ch.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: nil result channel", types.ErrInternal)
	}
	chosen, v, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: ch},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	})
	if chosen == 1 {
		return reflect.Value{}, ctx.Err()
	}
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: result channel closed without value", types.ErrInternal)
	}
	if v.Type() == errorType || (v.Kind() == reflect.Interface && v.Type().Implements(errorType)) {
		if err := asError(v); err != nil {
			return reflect.Value{}, err
		}
	}
	return v, nil
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
