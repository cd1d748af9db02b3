package stationbus

import "errors"

// 公共错误定义
var (
	// ErrAlreadyStarted Station 已启动
	ErrAlreadyStarted = errors.New("station already started")

	// ErrNotStarted Station 未启动
	ErrNotStarted = errors.New("station not started")

	// ErrStationClosed Station 已关闭
	ErrStationClosed = errors.New("station closed")
)
