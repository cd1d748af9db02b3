package registrar

import "errors"

var (
	// ErrUnsupportedShape 操作签名不受支持
	ErrUnsupportedShape = errors.New("registrar: unsupported operation shape")

	// ErrUnknownSerializer 未知序列化器名称
	ErrUnknownSerializer = errors.New("registrar: unknown serializer")

	// ErrNoSuchMethod 对象没有指定的导出方法
	ErrNoSuchMethod = errors.New("registrar: no such method")
)
