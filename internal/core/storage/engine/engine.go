package engine

import (
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// InternalEngine 内部扩展接口
type InternalEngine interface {
	pkgif.Engine

	// Start 启动后台任务（值日志 GC）
	Start() error

	// Sync 同步数据到磁盘
	Sync() error

	// Stats 返回引擎统计信息
	Stats() Stats
}

// Stats 引擎统计
type Stats struct {
	NumReads   int64
	NumWrites  int64
	NumDeletes int64
	NumScans   int64
	LSMSize    int64
	VlogSize   int64
}
