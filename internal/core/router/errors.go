package router

import "errors"

var (
	// ErrDuplicateRoute 路由已注册
	ErrDuplicateRoute = errors.New("router: route already registered")

	// ErrEmptyRoute 路由为空
	ErrEmptyRoute = errors.New("router: empty route")

	// ErrNilHandler 处理器为 nil
	ErrNilHandler = errors.New("router: nil handler")
)
